package testing

import (
	"errors"
	"io"
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/require"
)

func mustDir(t *testing.T, parent provider.DirectoryHandle, name string) provider.DirectoryHandle {
	t.Helper()

	dir, err := parent.GetDirectoryHandle(testContext(), name, provider.GetDirectoryOptions{Create: true})
	require.NoError(t, err)
	return dir
}

func mustFile(t *testing.T, parent provider.DirectoryHandle, name string) provider.FileHandle {
	t.Helper()

	file, err := parent.GetFileHandle(testContext(), name, provider.GetFileOptions{Create: true})
	require.NoError(t, err)
	return file
}

// mustWrite replaces the bytes of file with data.
func mustWrite(t *testing.T, file provider.FileHandle, data string) {
	t.Helper()

	stream, err := file.CreateWritable(testContext(), provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(testContext(), provider.WriteParams{Data: []byte(data)}))
	require.NoError(t, stream.Close(testContext()))
}

// mustRead returns the whole current content of file.
func mustRead(t *testing.T, file provider.FileHandle) string {
	t.Helper()

	snap, err := file.GetFile(testContext())
	require.NoError(t, err)

	data, err := snap.ReadRange(testContext(), 0, snap.Size())
	require.NoError(t, err)
	return string(data)
}

// collectNames drains a fresh enumeration of dir.
func collectNames(t *testing.T, dir provider.DirectoryHandle) map[string]provider.Kind {
	t.Helper()

	it, err := dir.Entries(testContext())
	require.NoError(t, err)
	defer it.Close()

	names := make(map[string]provider.Kind)
	for {
		entry, err := it.Next(testContext())
		if errors.Is(err, io.EOF) {
			return names
		}
		require.NoError(t, err)
		require.Equal(t, entry.Name, entry.Handle.Name())
		names[entry.Name] = entry.Handle.Kind()
	}
}

func requireCode(t *testing.T, err error, code provider.ErrorCode) {
	t.Helper()

	require.Error(t, err)
	got, ok := provider.CodeOf(err)
	require.True(t, ok, "expected *provider.Error, got %T: %v", err, err)
	require.Equal(t, code, got, "unexpected code for %q", err)
}

func int64Ptr(v int64) *int64 { return &v }
