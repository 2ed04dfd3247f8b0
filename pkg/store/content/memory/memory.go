// Package memory implements an in-memory content store.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// MemoryContentStoreConfig configures a MemoryContentStore.
type MemoryContentStoreConfig struct {
	// MaxSize caps the total bytes held by the store (0 = unlimited).
	// Writes that would exceed it fail with content.ErrStorageFull.
	MaxSize uint64 `mapstructure:"max_size"`
}

// MemoryContentStore implements ContentStore using in-memory storage.
//
// Designed for:
//   - Testing and development
//   - The mem:// locator scheme
//   - Temporary/ephemeral roots
//
// Thread Safety:
// All operations are protected by a sync.RWMutex. Data is copied on the way
// in and on the way out, so callers never alias stored buffers.
type MemoryContentStore struct {
	// data stores the actual file content keyed by ContentID
	data map[metadata.ContentID][]byte

	// used is the sum of len(data[id]) over all ids
	used uint64

	maxSize uint64

	// mu protects data and used
	mu sync.RWMutex
}

// NewMemoryContentStore creates a new in-memory content store.
//
// Parameters:
//   - ctx: Context for cancellation (checked before initialization)
//   - config: Store configuration
//
// Returns:
//   - *MemoryContentStore: Initialized store
//   - error: Only returns error if context is cancelled
func NewMemoryContentStore(ctx context.Context, config MemoryContentStoreConfig) (*MemoryContentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &MemoryContentStore{
		data:    make(map[metadata.ContentID][]byte),
		maxSize: config.MaxSize,
	}, nil
}

// GetStorageStats returns statistics about the in-memory storage.
//
// TotalSize is MaxSize, or unlimited (^uint64(0)) when no cap is set.
func (s *MemoryContentStore) GetStorageStats(ctx context.Context) (*content.StorageStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	contentCount := uint64(len(s.data))
	averageSize := uint64(0)
	if contentCount > 0 {
		averageSize = s.used / contentCount
	}

	total := ^uint64(0)
	available := ^uint64(0)
	if s.maxSize > 0 {
		total = s.maxSize
		available = s.maxSize - s.used
	}

	return &content.StorageStats{
		TotalSize:     total,
		UsedSize:      s.used,
		AvailableSize: available,
		ContentCount:  contentCount,
		AverageSize:   averageSize,
	}, nil
}

// ListAllContent returns every stored content ID in sorted order.
func (s *MemoryContentStore) ListAllContent(ctx context.Context) ([]metadata.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]metadata.ContentID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// DeleteBatch removes ids under a single lock acquisition. It never
// reports per-id failures.
func (s *MemoryContentStore) DeleteBatch(ctx context.Context, ids []metadata.ContentID) (map[metadata.ContentID]error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.used -= uint64(len(s.data[id]))
		delete(s.data, id)
	}
	return map[metadata.ContentID]error{}, nil
}

// Close drops all content.
func (s *MemoryContentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[metadata.ContentID][]byte)
	s.used = 0
	return nil
}

// reserveLocked checks that id growing to size bytes fits in maxSize, so
// callers can reject a write before allocating its buffer.
// Caller must hold s.mu.
func (s *MemoryContentStore) reserveLocked(id metadata.ContentID, size uint64) error {
	next := s.used - uint64(len(s.data[id])) + size
	if s.maxSize > 0 && next > s.maxSize {
		return content.ErrStorageFull
	}
	return nil
}

// replaceLocked stores buf under id while enforcing maxSize.
// Caller must hold s.mu for writing.
func (s *MemoryContentStore) replaceLocked(id metadata.ContentID, buf []byte) error {
	if err := s.reserveLocked(id, uint64(len(buf))); err != nil {
		return err
	}
	next := s.used - uint64(len(s.data[id])) + uint64(len(buf))
	s.data[id] = buf
	s.used = next
	return nil
}
