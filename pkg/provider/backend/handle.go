package backend

import (
	"context"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// entry is implemented by every handle this package returns. It lets a
// provider recognise its own handles when comparing or resolving.
type entry interface {
	provider.EntryRef
	backendEntry() *handle
}

// handle is the state shared by file and directory handles.
//
// A handle holds no attributes beyond its identity: every operation reads the
// current entry from the metadata store.
type handle struct {
	p    *Provider
	fh   metadata.FileHandle
	id   uuid.UUID
	name string
	kind provider.Kind
}

func (h *handle) Kind() provider.Kind   { return h.kind }
func (h *handle) Name() string          { return h.name }
func (h *handle) backendEntry() *handle { return h }

// IsSameEntry compares handles of this provider by entry id. Any other
// EntryRef is compared by kind and name.
func (h *handle) IsSameEntry(ctx context.Context, other provider.EntryRef) (same bool, err error) {
	done, err := h.p.begin(ctx, "is_same_entry")
	if err != nil {
		return false, err
	}
	defer func() { done(err) }()

	if other == nil {
		return false, provider.NewError(provider.ErrInvalidArgument, "Cannot compare with a null entry")
	}

	if e, ok := other.(entry); ok {
		o := e.backendEntry()
		return o.p == h.p && o.id == h.id, nil
	}
	return other.Kind() == h.kind && other.Name() == h.name, nil
}

// QueryPermission derives the permission state from the entry mode bits.
//
// read is granted when any read bit is set. readwrite is granted when any
// write bit is set and the provider is not read-only.
func (h *handle) QueryPermission(ctx context.Context, desc provider.PermissionDescriptor) (state provider.PermissionState, err error) {
	done, err := h.p.begin(ctx, "query_permission")
	if err != nil {
		return "", err
	}
	defer func() { done(err) }()

	return h.queryPermission(ctx, desc)
}

// RequestPermission grants what QueryPermission grants. Otherwise a read-only
// provider denies and any other provider leaves the decision to the user.
func (h *handle) RequestPermission(ctx context.Context, desc provider.PermissionDescriptor) (state provider.PermissionState, err error) {
	done, err := h.p.begin(ctx, "request_permission")
	if err != nil {
		return "", err
	}
	defer func() { done(err) }()

	state, err = h.queryPermission(ctx, desc)
	if err != nil || state == provider.PermissionGranted {
		return state, err
	}
	if h.p.readOnly {
		return provider.PermissionDenied, nil
	}
	return provider.PermissionPrompt, nil
}

func (h *handle) queryPermission(ctx context.Context, desc provider.PermissionDescriptor) (provider.PermissionState, error) {
	file, err := h.p.meta.GetFile(ctx, h.fh)
	if err != nil {
		return "", mapStoreError(err)
	}

	switch desc.Mode {
	case "", provider.PermissionRead:
		if file.Mode&0o444 != 0 {
			return provider.PermissionGranted, nil
		}
		return provider.PermissionDenied, nil
	case provider.PermissionReadWrite:
		if file.Mode&0o222 != 0 && !h.p.readOnly {
			return provider.PermissionGranted, nil
		}
		return provider.PermissionDenied, nil
	default:
		return "", provider.Errorf(provider.ErrInvalidArgument, "Unknown permission mode \"%s\"", desc.Mode)
	}
}

func (p *Provider) newHandle(file *metadata.File, fh metadata.FileHandle, name string, kind provider.Kind) handle {
	return handle{p: p, fh: fh, id: file.ID, name: name, kind: kind}
}

// newDirHandle wraps a directory entry. name overrides the stored name so the
// share root can be presented as "".
func (p *Provider) newDirHandle(file *metadata.File, name string) *dirHandle {
	fh, _ := metadata.EncodeShareHandle(file.ShareName, file.ID)
	return &dirHandle{handle: p.newHandle(file, fh, name, provider.KindDirectory)}
}

func (p *Provider) newFileHandle(file *metadata.File) *fileHandle {
	fh, _ := metadata.EncodeShareHandle(file.ShareName, file.ID)
	return &fileHandle{handle: p.newHandle(file, fh, file.Name, provider.KindFile)}
}

// wrap returns the handle matching the entry type.
func (p *Provider) wrap(file *metadata.File) provider.Handle {
	if file.Type == metadata.FileTypeDirectory {
		name := file.Name
		if file.IsRoot() {
			name = ""
		}
		return p.newDirHandle(file, name)
	}
	return p.newFileHandle(file)
}
