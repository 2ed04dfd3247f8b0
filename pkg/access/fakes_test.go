package access

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/provider/backend"
	"github.com/stretchr/testify/require"
)

const sampleText = backend.SampleText

// openSample opens a fresh in-memory root holding the sample tree.
func openSample(t *testing.T) *DirectoryHandle {
	t.Helper()

	root, err := Open(context.Background(), "mem:///?seed=sample")
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	return root
}

func mustGetFile(t *testing.T, dir *DirectoryHandle, name string) *File {
	t.Helper()

	fh, err := dir.GetFileHandle(context.Background(), name, nil)
	require.NoError(t, err)
	file, err := fh.GetFile(context.Background())
	require.NoError(t, err)
	return file
}

func mustText(t *testing.T, dir *DirectoryHandle, name string) string {
	t.Helper()

	text, err := mustGetFile(t, dir, name).Text(context.Background())
	require.NoError(t, err)
	return text
}

type ref struct {
	kind provider.Kind
	name string
}

func (r ref) Kind() provider.Kind { return r.kind }
func (r ref) Name() string        { return r.name }

// fakeFile is an in-memory provider.File that counts reads.
type fakeFile struct {
	data  []byte
	chunk int
	reads int
}

func (f *fakeFile) Name() string            { return "fake" }
func (f *fakeFile) Type() string            { return "text/plain" }
func (f *fakeFile) Size() int64             { return int64(len(f.data)) }
func (f *fakeFile) LastModified() time.Time { return time.Unix(1658159058, 0) }
func (f *fakeFile) PreferredReadSize() int  { return f.chunk }

func (f *fakeFile) ReadRange(_ context.Context, offset, length int64) ([]byte, error) {
	f.reads++
	if offset >= int64(len(f.data)) {
		return []byte{}, nil
	}
	end := min(offset+length, int64(len(f.data)))
	return append([]byte(nil), f.data[offset:end]...), nil
}

// fakeDir is a provider directory whose enumeration counts how far it has
// been consumed.
type fakeDir struct {
	names  []string
	pulled int
	opened int
	err    error

	// closeErr is returned when the enumeration is released.
	closeErr error

	// child is returned for every entry when set.
	child provider.Handle
}

func (d *fakeDir) Kind() provider.Kind { return provider.KindDirectory }
func (d *fakeDir) Name() string        { return "fake" }

func (d *fakeDir) IsSameEntry(context.Context, provider.EntryRef) (bool, error) { return false, nil }

func (d *fakeDir) QueryPermission(context.Context, provider.PermissionDescriptor) (provider.PermissionState, error) {
	return provider.PermissionPrompt, nil
}

func (d *fakeDir) RequestPermission(context.Context, provider.PermissionDescriptor) (provider.PermissionState, error) {
	return provider.PermissionPrompt, nil
}

func (d *fakeDir) GetDirectoryHandle(context.Context, string, provider.GetDirectoryOptions) (provider.DirectoryHandle, error) {
	return nil, errors.New(provider.MsgWrongEntryType)
}

func (d *fakeDir) GetFileHandle(context.Context, string, provider.GetFileOptions) (provider.FileHandle, error) {
	return nil, d.err
}

func (d *fakeDir) RemoveEntry(context.Context, string, provider.RemoveOptions) error {
	return d.err
}

func (d *fakeDir) Resolve(context.Context, provider.EntryRef) ([]string, error) {
	return nil, nil
}

func (d *fakeDir) Entries(context.Context) (provider.DirectoryIterator, error) {
	d.opened++
	return &fakeIterator{d: d}, nil
}

type fakeIterator struct {
	d   *fakeDir
	idx int
}

func (it *fakeIterator) Next(context.Context) (provider.DirEntry, error) {
	if it.idx >= len(it.d.names) {
		if it.d.err != nil {
			return provider.DirEntry{}, it.d.err
		}
		return provider.DirEntry{}, io.EOF
	}
	name := it.d.names[it.idx]
	it.idx++
	it.d.pulled++
	if it.d.child != nil {
		return provider.DirEntry{Name: name, Handle: it.d.child}, nil
	}
	return provider.DirEntry{Name: name, Handle: &fakeDir{}}, nil
}

func (it *fakeIterator) Close() error { return it.d.closeErr }

// fakeStream is a provider stream with a scriptable lock.
type fakeStream struct {
	locked     bool
	releaseErr error
	writes     []provider.WriteParams
}

func (s *fakeStream) Locked() bool { return s.locked }

func (s *fakeStream) Write(_ context.Context, params provider.WriteParams) error {
	s.writes = append(s.writes, params)
	return nil
}

func (s *fakeStream) Seek(context.Context, int64) error     { return nil }
func (s *fakeStream) Truncate(context.Context, int64) error { return nil }
func (s *fakeStream) Close(context.Context) error           { return nil }

func (s *fakeStream) Abort(_ context.Context, reason string) (string, error) { return reason, nil }

func (s *fakeStream) GetWriter(context.Context) (provider.Writer, error) {
	if s.locked {
		return nil, provider.NewError(provider.ErrLockConflict, provider.MsgWriterLocked)
	}
	s.locked = true
	return &fakeWriter{s: s}, nil
}

type fakeWriter struct {
	s *fakeStream
}

func (w *fakeWriter) Ready() <-chan struct{}  { return nil }
func (w *fakeWriter) Closed() <-chan struct{} { return nil }

func (w *fakeWriter) DesiredSize(context.Context) (int64, error) { return 0, nil }

func (w *fakeWriter) Write(ctx context.Context, params provider.WriteParams) error {
	return w.s.Write(ctx, params)
}

func (w *fakeWriter) Close(context.Context) error { return nil }

func (w *fakeWriter) Abort(_ context.Context, reason string) (string, error) { return reason, nil }

func (w *fakeWriter) ReleaseLock(context.Context) error {
	if w.s.releaseErr != nil {
		return w.s.releaseErr
	}
	w.s.locked = false
	return nil
}

// bareHandle is a provider handle that is neither a file nor a directory
// handle.
type bareHandle struct{ ref }

func (bareHandle) IsSameEntry(context.Context, provider.EntryRef) (bool, error) { return false, nil }

func (bareHandle) QueryPermission(context.Context, provider.PermissionDescriptor) (provider.PermissionState, error) {
	return provider.PermissionDenied, nil
}

func (bareHandle) RequestPermission(context.Context, provider.PermissionDescriptor) (provider.PermissionState, error) {
	return provider.PermissionDenied, nil
}
