package access

import (
	"context"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// EntryHandle is either a *FileHandle or a *DirectoryHandle.
type EntryHandle interface {
	provider.EntryRef
	IsSameEntry(ctx context.Context, other provider.EntryRef) (bool, error)
	QueryPermission(ctx context.Context, desc provider.PermissionDescriptor) (provider.PermissionState, error)
	RequestPermission(ctx context.Context, desc provider.PermissionDescriptor) (provider.PermissionState, error)
	Unwrap() provider.Handle
}

// Handle is the part shared by file and directory handles. It is immutable
// and holds nothing but the wrapped provider handle.
type Handle struct {
	raw provider.Handle
}

// Kind returns "file" or "directory".
func (h *Handle) Kind() provider.Kind { return h.raw.Kind() }

// Name returns the entry name ("" for a provider root).
func (h *Handle) Name() string { return h.raw.Name() }

// IsFile reports whether the handle is a file handle.
//
// Deprecated: compare Kind with provider.KindFile.
func (h *Handle) IsFile() bool { return h.raw.Kind() == provider.KindFile }

// IsDirectory reports whether the handle is a directory handle.
//
// Deprecated: compare Kind with provider.KindDirectory.
func (h *Handle) IsDirectory() bool { return h.raw.Kind() == provider.KindDirectory }

// Unwrap returns the provider handle.
func (h *Handle) Unwrap() provider.Handle { return h.raw }

// IsSameEntry reports whether other denotes the same entry.
//
// other may be a handle from this package, a provider handle, or any value
// carrying a kind and a name. Handles from this package are unwrapped before
// the provider compares them. A nil other, or one whose kind is neither file
// nor directory, fails with ErrInvalidArgument.
func (h *Handle) IsSameEntry(ctx context.Context, other provider.EntryRef) (bool, error) {
	ref, err := unwrapRef(other)
	if err != nil {
		return false, err
	}
	same, err := h.raw.IsSameEntry(ctx, ref)
	return same, translateError(err)
}

// QueryPermission relays a permission query to the provider.
func (h *Handle) QueryPermission(ctx context.Context, desc provider.PermissionDescriptor) (provider.PermissionState, error) {
	state, err := h.raw.QueryPermission(ctx, desc)
	return state, translateError(err)
}

// RequestPermission relays a permission request to the provider.
func (h *Handle) RequestPermission(ctx context.Context, desc provider.PermissionDescriptor) (provider.PermissionState, error) {
	state, err := h.raw.RequestPermission(ctx, desc)
	return state, translateError(err)
}

// unwrapRef returns the provider reference behind ref.
func unwrapRef(ref provider.EntryRef) (provider.EntryRef, error) {
	switch v := ref.(type) {
	case nil:
		return nil, provider.NewError(provider.ErrInvalidArgument, "Entry must not be null")
	case *FileHandle:
		if v == nil {
			return nil, provider.NewError(provider.ErrInvalidArgument, "Entry must not be null")
		}
		return v.raw, nil
	case *DirectoryHandle:
		if v == nil {
			return nil, provider.NewError(provider.ErrInvalidArgument, "Entry must not be null")
		}
		return v.raw, nil
	}

	switch kind := ref.Kind(); kind {
	case provider.KindFile, provider.KindDirectory:
		return ref, nil
	default:
		return nil, provider.Errorf(provider.ErrInvalidArgument, "Entry kind \"%s\" is neither file nor directory", kind)
	}
}
