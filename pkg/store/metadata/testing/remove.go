package testing

import (
	"context"
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRemoveTests executes removal tests.
func (suite *StoreTestSuite) RunRemoveTests(test *testing.T) {
	test.Run("RemoveFile_Success", suite.testRemoveFileSuccess)
	test.Run("RemoveFile_NotFound", suite.testRemoveFileNotFound)
	test.Run("RemoveFile_ReturnsEntry", suite.testRemoveFileReturnsEntry)
	test.Run("RemoveFile_UpdatesParent", suite.testRemoveFileUpdatesParent)
	test.Run("RemoveDirectory_Empty", suite.testRemoveDirectoryEmpty)
	test.Run("RemoveDirectory_NotEmpty", suite.testRemoveDirectoryNotEmpty)
}

func (suite *StoreTestSuite) testRemoveFileSuccess(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	_, rootHandle := createTestShare(t, store, "/export/data")
	fileHandle := createTestFile(t, store, rootHandle, "testfile.txt")

	_, err := store.Remove(context.Background(), rootHandle, "testfile.txt")
	require.NoError(t, err)

	_, err = store.Lookup(context.Background(), rootHandle, "testfile.txt")
	requireCode(t, err, metadata.ErrNotFound)

	_, err = store.GetFile(context.Background(), fileHandle)
	requireCode(t, err, metadata.ErrNotFound)
}

func (suite *StoreTestSuite) testRemoveFileNotFound(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	_, rootHandle := createTestShare(t, store, "/export/data")

	_, err := store.Remove(context.Background(), rootHandle, "nope")
	requireCode(t, err, metadata.ErrNotFound)
}

func (suite *StoreTestSuite) testRemoveFileReturnsEntry(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	_, rootHandle := createTestShare(t, store, "/export/data")

	attr := DefaultFileAttr()
	attr.Size = 5
	attr.ContentID = "content-5"
	_, err := store.Create(context.Background(), rootHandle, "f", attr)
	require.NoError(t, err)

	removed, err := store.Remove(context.Background(), rootHandle, "f")
	require.NoError(t, err)
	assert.Equal(t, "f", removed.Name)
	assert.Equal(t, metadata.ContentID("content-5"), removed.ContentID)
	assert.Equal(t, uint64(5), removed.Size)
}

func (suite *StoreTestSuite) testRemoveFileUpdatesParent(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	_, rootHandle := createTestShare(t, store, "/export/data")
	createTestFile(t, store, rootHandle, "f")

	before := mustGetFile(t, store, rootHandle)

	_, err := store.Remove(context.Background(), rootHandle, "f")
	require.NoError(t, err)

	after := mustGetFile(t, store, rootHandle)
	assert.False(t, after.Mtime.Before(before.Mtime))
}

func (suite *StoreTestSuite) testRemoveDirectoryEmpty(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	_, rootHandle := createTestShare(t, store, "/export/data")
	createTestDirectory(t, store, rootHandle, "d")

	removed, err := store.Remove(context.Background(), rootHandle, "d")
	require.NoError(t, err)
	assert.Equal(t, metadata.FileTypeDirectory, removed.Type)

	// The name is free again.
	createTestFile(t, store, rootHandle, "d")
}

func (suite *StoreTestSuite) testRemoveDirectoryNotEmpty(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	_, rootHandle := createTestShare(t, store, "/export/data")
	dirHandle := createTestDirectory(t, store, rootHandle, "d")
	createTestFile(t, store, dirHandle, "inner")

	_, err := store.Remove(context.Background(), rootHandle, "d")
	requireCode(t, err, metadata.ErrNotEmpty)

	// Nothing was removed.
	_, err = store.Lookup(context.Background(), dirHandle, "inner")
	assert.NoError(t, err)

	_, err = store.Remove(context.Background(), dirHandle, "inner")
	require.NoError(t, err)
	_, err = store.Remove(context.Background(), rootHandle, "d")
	assert.NoError(t, err)
}
