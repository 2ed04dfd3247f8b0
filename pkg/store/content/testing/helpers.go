package testing

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/require"
)

// generateTestID returns a unique ContentID tagged with name.
func generateTestID(name string) metadata.ContentID {
	return metadata.ContentID(uuid.NewString() + "-" + name)
}

// generateTestData returns size bytes of a repeating pattern.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func mustWriteContent(t *testing.T, store content.ContentStore, id metadata.ContentID, data []byte) {
	t.Helper()
	require.NoError(t, store.WriteContent(testContext(), id, data))
}

func mustReadContent(t *testing.T, store content.ContentStore, id metadata.ContentID) []byte {
	t.Helper()

	reader, err := store.ReadContent(testContext(), id)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	return data
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t *testing.T, target, err error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, target)
}
