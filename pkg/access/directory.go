package access

import (
	"context"
	"io"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// DirectoryHandle is the adapter for a provider directory handle.
//
// Every handle it returns, whether looked up, created, or enumerated, is a
// fresh wrapper around the handle the provider returned. Nothing is cached.
type DirectoryHandle struct {
	Handle
	dir provider.DirectoryHandle
}

// GetDirectoryHandle returns the child directory name.
//
// Returns:
//   - *DirectoryHandle: The child, created when missing and opts.Create is set
//   - error: ErrNotFound `Directory "<name>" not found`, ErrTypeMismatch when
//     name is a file, or any other provider failure unchanged
func (d *DirectoryHandle) GetDirectoryHandle(ctx context.Context, name string, opts *GetDirectoryOptions) (*DirectoryHandle, error) {
	var o GetDirectoryOptions
	if opts != nil {
		o = *opts
	}

	child, err := d.dir.GetDirectoryHandle(ctx, name, o)
	if err != nil {
		return nil, translateError(err)
	}
	return Wrap(child), nil
}

// GetFileHandle returns the child file name. With opts.Create an existing
// file is returned unchanged.
//
// Returns:
//   - *FileHandle: The child file
//   - error: ErrNotFound `File "<name>" not found`, ErrTypeMismatch when
//     name is a directory, or any other provider failure unchanged
func (d *DirectoryHandle) GetFileHandle(ctx context.Context, name string, opts *GetFileOptions) (*FileHandle, error) {
	var o GetFileOptions
	if opts != nil {
		o = *opts
	}

	child, err := d.dir.GetFileHandle(ctx, name, o)
	if err != nil {
		return nil, translateError(err)
	}
	return WrapFile(child), nil
}

// RemoveEntry removes the child name.
//
// A populated directory fails with ErrNotEmpty `Directory "<name>" is not
// empty` unless opts.Recursive is set. A missing child fails with ErrNotFound
// `Entry "<name>" not found`.
func (d *DirectoryHandle) RemoveEntry(ctx context.Context, name string, opts *RemoveOptions) error {
	var o RemoveOptions
	if opts != nil {
		o = *opts
	}
	return translateError(d.dir.RemoveEntry(ctx, name, o))
}

// Resolve returns the names leading from d to entry, or nil when entry is
// not a descendant. Handles from this package are unwrapped first, exactly
// as in IsSameEntry.
func (d *DirectoryHandle) Resolve(ctx context.Context, entry provider.EntryRef) ([]string, error) {
	ref, err := unwrapRef(entry)
	if err != nil {
		return nil, err
	}
	path, err := d.dir.Resolve(ctx, ref)
	if err != nil {
		return nil, translateError(err)
	}
	return path, nil
}

// Entries returns a fresh lazy sequence of (name, handle) pairs.
func (d *DirectoryHandle) Entries(ctx context.Context) *EntryIterator {
	return &EntryIterator{ctx: ctx, dir: d.dir}
}

// Keys returns a fresh lazy sequence of child names.
func (d *DirectoryHandle) Keys(ctx context.Context) *KeyIterator {
	return &KeyIterator{entries: d.Entries(ctx)}
}

// Values returns a fresh lazy sequence of child handles.
func (d *DirectoryHandle) Values(ctx context.Context) *ValueIterator {
	return &ValueIterator{entries: d.Entries(ctx)}
}

// Close releases provider resources when the provider handle owns any
// (roots opened from a locator do). It is a no-op otherwise.
func (d *DirectoryHandle) Close() error {
	if c, ok := d.dir.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// GetFile is the former name of GetFileHandle.
//
// Deprecated: use GetFileHandle.
func (d *DirectoryHandle) GetFile(ctx context.Context, name string, opts *GetFileOptions) (*FileHandle, error) {
	return d.GetFileHandle(ctx, name, opts)
}

// GetDirectory is the former name of GetDirectoryHandle.
//
// Deprecated: use GetDirectoryHandle.
func (d *DirectoryHandle) GetDirectory(ctx context.Context, name string, opts *GetDirectoryOptions) (*DirectoryHandle, error) {
	return d.GetDirectoryHandle(ctx, name, opts)
}

// GetEntries is the former name of Values.
//
// Deprecated: use Values.
func (d *DirectoryHandle) GetEntries(ctx context.Context) *ValueIterator {
	return d.Values(ctx)
}
