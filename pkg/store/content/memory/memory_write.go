package memory

import (
	"context"
	"fmt"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// WriteAt writes data at the specified offset.
//
// This implements sparse file semantics:
//   - If content doesn't exist: create with zeros up to offset, then data
//   - If offset > current size: extend with zeros, then write data
//   - If offset < current size: overwrite existing data
//
// Context Cancellation:
// Checked before acquiring the lock. The write itself is atomic.
func (s *MemoryContentStore) WriteAt(ctx context.Context, id metadata.ContentID, data []byte, offset int64) error {
	// ========================================================================
	// Step 1: Check context and validate offset
	// ========================================================================

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := content.CheckWriteRange(offset, len(data)); err != nil {
		return err
	}

	// ========================================================================
	// Step 2: Build the new buffer under the write lock
	// ========================================================================

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[id]
	newSize := max(int(offset)+len(data), len(existing))
	if err := s.reserveLocked(id, uint64(newSize)); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}

	// Gap between the old size and offset is already zeros from make().
	result := make([]byte, newSize)
	copy(result, existing)
	copy(result[offset:], data)

	if err := s.replaceLocked(id, result); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}
	return nil
}

// WriteContent replaces any existing content with a copy of data.
func (s *MemoryContentStore) WriteContent(ctx context.Context, id metadata.ContentID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	if err := s.replaceLocked(id, dataCopy); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}
	return nil
}

// Truncate changes the size of the content.
//
// Truncate Semantics:
//   - If newSize < currentSize: trailing data is removed
//   - If newSize > currentSize: content is extended with zeros
//   - If newSize == currentSize: no-op
func (s *MemoryContentStore) Truncate(ctx context.Context, id metadata.ContentID, newSize uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[id]
	if !exists {
		return fmt.Errorf("truncate failed for %s: %w", id, content.ErrContentNotFound)
	}
	if newSize == uint64(len(existing)) {
		return nil
	}
	if err := content.CheckSize(newSize); err != nil {
		return err
	}
	if err := s.reserveLocked(id, newSize); err != nil {
		return fmt.Errorf("truncate %s: %w", id, err)
	}

	newData := make([]byte, newSize)
	copy(newData, existing)

	if err := s.replaceLocked(id, newData); err != nil {
		return fmt.Errorf("truncate %s: %w", id, err)
	}
	return nil
}

// Delete removes content from the store. Deleting missing content is a no-op.
func (s *MemoryContentStore) Delete(ctx context.Context, id metadata.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.used -= uint64(len(s.data[id]))
	delete(s.data, id)
	return nil
}
