package metadata

import (
	"context"
)

// MetadataStore manages the entry tree of one or more shares.
//
// It owns names, hierarchy, and attributes. File bytes live in a content
// store and are referenced by FileAttr.ContentID; the metadata store never
// touches content.
//
// Context Cancellation:
// Every method checks ctx before doing any work.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type MetadataStore interface {
	// CreateRootDirectory creates the root directory of a share.
	//
	// The call is idempotent: if the share already has a root, the existing
	// root is returned unchanged and attr is ignored.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - shareName: Share name (e.g., "/export")
	//   - attr: Attributes of the root (Type is forced to FileTypeDirectory)
	//
	// Returns:
	//   - *File: The share root
	//   - error: ErrInvalidArgument for a bad share name, or storage errors
	CreateRootDirectory(ctx context.Context, shareName string, attr *FileAttr) (*File, error)

	// GetRootHandle returns the handle of a share root.
	//
	// Returns ErrNotFound if the share has no root.
	GetRootHandle(ctx context.Context, shareName string) (FileHandle, error)

	// GetFile returns the entry referenced by handle.
	//
	// Returns ErrInvalidHandle for malformed handles and ErrNotFound for
	// entries that no longer exist.
	GetFile(ctx context.Context, handle FileHandle) (*File, error)

	// Lookup returns the child named name of the directory dirHandle.
	//
	// Returns:
	//   - *File: The child entry
	//   - error: ErrNotFound if no such child, ErrNotDirectory if dirHandle
	//     is a file, ErrInvalidArgument for invalid names
	Lookup(ctx context.Context, dirHandle FileHandle, name string) (*File, error)

	// Create adds a new entry named name under parentHandle.
	//
	// The store assigns ID, ShareName, ParentID, Ctime, and (when zero) Mtime.
	//
	// Returns:
	//   - *File: The created entry
	//   - error: ErrAlreadyExists if the name is taken, ErrNotDirectory if
	//     the parent is a file, ErrInvalidArgument for invalid names
	Create(ctx context.Context, parentHandle FileHandle, name string, attr *FileAttr) (*File, error)

	// SetFileAttributes updates selected attributes of an entry.
	//
	// Returns the updated entry. Size or ContentID on a directory fails with
	// ErrIsDirectory.
	SetFileAttributes(ctx context.Context, handle FileHandle, attrs *SetAttrs) (*File, error)

	// Remove deletes the child named name of parentHandle.
	//
	// Directories must be empty; a populated directory fails with ErrNotEmpty.
	// The removed entry is returned so callers can release its content.
	Remove(ctx context.Context, parentHandle FileHandle, name string) (*File, error)

	// ReadDirectory returns one page of the children of dirHandle.
	//
	// Parameters:
	//   - token: "" for the first page, otherwise ReadDirPage.NextToken
	//   - limit: Maximum entries per page (DefaultPageSize when <= 0)
	ReadDirectory(ctx context.Context, dirHandle FileHandle, token string, limit int) (*ReadDirPage, error)

	// GetAllContentIDs returns every ContentID referenced by a regular file
	// entry, across all shares, without duplicates. The orphaned content
	// collector subtracts this set from the content store's listing.
	GetAllContentIDs(ctx context.Context) ([]ContentID, error)

	// Healthcheck verifies the store is operational.
	Healthcheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
