// Package content defines the byte storage used by the backend provider.
//
// A ContentStore holds the raw bytes of files, addressed by an opaque
// metadata.ContentID. Names, hierarchy and attributes live in a
// metadata.MetadataStore; the two are joined by FileAttr.ContentID.
package content

import (
	"context"
	"io"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// ContentStore provides random-access byte storage keyed by ContentID.
//
// Write Semantics:
//   - WriteAt creates missing content and zero-fills any gap before offset
//   - Truncate shrinks or zero-extends existing content
//   - Delete is idempotent
//
// Context Cancellation:
// Every method checks ctx before doing any work. Long transfers (S3) also
// pass ctx down to the network calls.
//
// Thread Safety:
// Implementations must be safe for concurrent use. Concurrent writers to the
// same ContentID get last-write-wins; the backend provider serializes writers
// per file before they reach the store.
type ContentStore interface {
	// ReadAt reads up to length bytes starting at offset.
	//
	// The result is shorter than length when the content ends first, and
	// empty (not an error) when offset is at or past the end.
	//
	// Returns:
	//   - []byte: The bytes read (owned by the caller)
	//   - error: ErrContentNotFound, ErrInvalidOffset, ErrInvalidSize, or
	//     context/IO errors
	ReadAt(ctx context.Context, id metadata.ContentID, offset int64, length int) ([]byte, error)

	// ReadContent returns a sequential reader over the whole content.
	// The caller must close it.
	ReadContent(ctx context.Context, id metadata.ContentID) (io.ReadCloser, error)

	// GetContentSize returns the size of the content in bytes.
	GetContentSize(ctx context.Context, id metadata.ContentID) (uint64, error)

	// ContentExists reports whether content exists. A missing id is
	// (false, nil), not an error.
	ContentExists(ctx context.Context, id metadata.ContentID) (bool, error)

	// WriteAt writes data at offset, creating the content if needed.
	WriteAt(ctx context.Context, id metadata.ContentID, data []byte, offset int64) error

	// WriteContent replaces the whole content with data.
	WriteContent(ctx context.Context, id metadata.ContentID, data []byte) error

	// Truncate resizes existing content, zero-filling on growth.
	Truncate(ctx context.Context, id metadata.ContentID, newSize uint64) error

	// Delete removes content. Deleting missing content succeeds.
	Delete(ctx context.Context, id metadata.ContentID) error

	// GetStorageStats returns usage statistics for the store.
	GetStorageStats(ctx context.Context) (*StorageStats, error)

	// Close releases resources held by the store.
	Close() error
}

// GarbageCollectableStore is implemented by stores that can enumerate and
// bulk-delete their content, which is what the orphaned content collector
// needs.
//
// Content becomes garbage when:
//   - Deleting replaced or removed content fails
//   - The process stops between removing an entry and deleting its content
//   - The process stops while a writable stream is open
type GarbageCollectableStore interface {
	ContentStore

	// ListAllContent returns every content ID in the store, referenced or
	// not. Large stores may take a while; implementations check ctx while
	// iterating.
	ListAllContent(ctx context.Context) ([]metadata.ContentID, error)

	// DeleteBatch removes ids. Missing ids count as deleted.
	//
	// Returns:
	//   - map[metadata.ContentID]error: Per-id failures (empty on success)
	//   - error: A failure that affected the whole batch
	DeleteBatch(ctx context.Context, ids []metadata.ContentID) (map[metadata.ContentID]error, error)
}

// StorageStats contains statistics about content storage.
type StorageStats struct {
	// TotalSize is the total capacity in bytes (^uint64(0) when unbounded)
	TotalSize uint64

	// UsedSize is the number of bytes currently stored
	UsedSize uint64

	// AvailableSize is the remaining capacity in bytes
	AvailableSize uint64

	// ContentCount is the number of content items
	ContentCount uint64

	// AverageSize is UsedSize / ContentCount (0 when empty)
	AverageSize uint64
}

// CopyContent copies the bytes of src into dst, replacing dst.
//
// Used by providers that open a writable stream with the existing data kept.
func CopyContent(ctx context.Context, store ContentStore, src, dst metadata.ContentID) error {
	size, err := store.GetContentSize(ctx, src)
	if err != nil {
		return err
	}
	data, err := store.ReadAt(ctx, src, 0, int(size))
	if err != nil {
		return err
	}
	return store.WriteContent(ctx, dst, data)
}
