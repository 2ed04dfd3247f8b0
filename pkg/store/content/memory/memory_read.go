package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// ReadAt reads up to length bytes starting at offset.
//
// Context Cancellation:
// Only checked before acquiring the lock.
func (s *MemoryContentStore) ReadAt(ctx context.Context, id metadata.ContentID, offset int64, length int) ([]byte, error) {
	// ========================================================================
	// Step 1: Check context and validate the range
	// ========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset %d: %w", offset, content.ErrInvalidOffset)
	}
	if length < 0 {
		return nil, fmt.Errorf("length %d: %w", length, content.ErrInvalidSize)
	}

	// ========================================================================
	// Step 2: Copy the requested window out under the read lock
	// ========================================================================

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.data[id]
	if !exists {
		return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}

	size := int64(len(data))
	if offset >= size {
		return []byte{}, nil
	}
	end := offset + int64(length)
	if end > size {
		end = size
	}

	out := make([]byte, end-offset)
	copy(out, data[offset:end])
	return out, nil
}

// ReadContent returns a reader over a copy of the content, so later writes
// do not affect it.
func (s *MemoryContentStore) ReadContent(ctx context.Context, id metadata.ContentID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.data[id]
	if !exists {
		return nil, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	return io.NopCloser(bytes.NewReader(dataCopy)), nil
}

// GetContentSize returns the length of the stored byte slice.
func (s *MemoryContentStore) GetContentSize(ctx context.Context, id metadata.ContentID) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.data[id]
	if !exists {
		return 0, fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}
	return uint64(len(data)), nil
}

// ContentExists checks the map for id.
func (s *MemoryContentStore) ContentExists(ctx context.Context, id metadata.ContentID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[id]
	return exists, nil
}
