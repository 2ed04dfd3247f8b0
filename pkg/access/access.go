// Package access exposes a provider through the shape of the browser File
// System Access API.
//
// The adapter is a pure translator. Every call is forwarded to the wrapped
// provider handle; results are re-wrapped so that traversal keeps going
// through this package, and failures are passed through unchanged except
// for one reclassification: a provider failure reporting
// provider.MsgWrongEntryType becomes a provider.ErrTypeMismatch error.
//
// Example:
//
//	root, err := access.Open(ctx, "mem:///?seed=sample")
//	if err != nil {
//	    return err
//	}
//	defer root.Close()
//
//	for entry, err := range root.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(entry.Name, entry.Handle.Kind())
//	}
//
//	fh, err := root.GetFileHandle(ctx, "hello.txt", &access.GetFileOptions{Create: true})
//	stream, err := fh.CreateWritable(ctx, nil)
//	err = stream.Write(ctx, access.Text("Hello from Go"))
//	err = stream.Close(ctx)
package access

import (
	"context"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// Option types are shared with the provider contract.
type (
	GetDirectoryOptions   = provider.GetDirectoryOptions
	GetFileOptions        = provider.GetFileOptions
	RemoveOptions         = provider.RemoveOptions
	CreateWritableOptions = provider.CreateWritableOptions
)

// Open returns the root directory named by locator, using the provider
// registered for the locator's scheme.
func Open(ctx context.Context, locator string) (*DirectoryHandle, error) {
	dir, err := provider.Open(ctx, locator)
	if err != nil {
		return nil, translateError(err)
	}
	return Wrap(dir), nil
}

// Wrap adapts a provider directory handle. It returns nil for a nil dir.
func Wrap(dir provider.DirectoryHandle) *DirectoryHandle {
	if dir == nil {
		return nil
	}
	return &DirectoryHandle{Handle: Handle{raw: dir}, dir: dir}
}

// WrapFile adapts a provider file handle. It returns nil for a nil file.
func WrapFile(file provider.FileHandle) *FileHandle {
	if file == nil {
		return nil
	}
	return &FileHandle{Handle: Handle{raw: file}, file: file}
}

// wrapEntry adapts an enumerated child according to its kind.
func wrapEntry(h provider.Handle) (EntryHandle, error) {
	switch v := h.(type) {
	case provider.DirectoryHandle:
		if v.Kind() == provider.KindDirectory {
			return Wrap(v), nil
		}
	case provider.FileHandle:
		if v.Kind() == provider.KindFile {
			return WrapFile(v), nil
		}
	}
	return nil, provider.Errorf(provider.ErrInvalidState, "Provider returned an unusable %T handle", h)
}
