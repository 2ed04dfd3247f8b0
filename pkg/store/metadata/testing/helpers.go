package testing

import (
	"context"
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/require"
)

// DefaultRootDirAttr creates default attributes for a share root directory.
func DefaultRootDirAttr() *metadata.FileAttr {
	return &metadata.FileAttr{
		Type: metadata.FileTypeDirectory,
		Mode: 0o755,
	}
}

// DefaultFileAttr creates default attributes for a regular file.
func DefaultFileAttr() *metadata.FileAttr {
	return &metadata.FileAttr{
		Type: metadata.FileTypeRegular,
		Mode: 0o644,
	}
}

// DefaultDirAttr creates default attributes for a directory.
func DefaultDirAttr() *metadata.FileAttr {
	return &metadata.FileAttr{
		Type: metadata.FileTypeDirectory,
		Mode: 0o755,
	}
}

// createTestShare creates a share root and returns it with its handle.
func createTestShare(t *testing.T, store metadata.MetadataStore, name string) (*metadata.File, metadata.FileHandle) {
	t.Helper()

	root, err := store.CreateRootDirectory(context.Background(), name, DefaultRootDirAttr())
	require.NoError(t, err)

	handle, err := store.GetRootHandle(context.Background(), name)
	require.NoError(t, err)

	return root, handle
}

// createTestFile creates a regular file under parent and returns its handle.
func createTestFile(t *testing.T, store metadata.MetadataStore, parent metadata.FileHandle, name string) metadata.FileHandle {
	t.Helper()

	file, err := store.Create(context.Background(), parent, name, DefaultFileAttr())
	require.NoError(t, err)

	handle, err := metadata.EncodeFileHandle(file)
	require.NoError(t, err)
	return handle
}

// createTestDirectory creates a directory under parent and returns its handle.
func createTestDirectory(t *testing.T, store metadata.MetadataStore, parent metadata.FileHandle, name string) metadata.FileHandle {
	t.Helper()

	dir, err := store.Create(context.Background(), parent, name, DefaultDirAttr())
	require.NoError(t, err)

	handle, err := metadata.EncodeFileHandle(dir)
	require.NoError(t, err)
	return handle
}

// mustGetFile fetches an entry and fails the test on error.
func mustGetFile(t *testing.T, store metadata.MetadataStore, handle metadata.FileHandle) *metadata.File {
	t.Helper()

	file, err := store.GetFile(context.Background(), handle)
	require.NoError(t, err)
	return file
}

// requireCode asserts that err is a StoreError with the given code.
func requireCode(t *testing.T, err error, code metadata.ErrorCode) {
	t.Helper()

	require.Error(t, err)
	got, ok := metadata.CodeOf(err)
	require.True(t, ok, "expected *metadata.StoreError, got %T: %v", err, err)
	require.Equal(t, code, got, "unexpected error code: %v", err)
}

// cancelledContext returns a context that is already cancelled.
func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
