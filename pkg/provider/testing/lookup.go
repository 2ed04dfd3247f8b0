package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLookupTests covers GetDirectoryHandle and GetFileHandle.
func (suite *ProviderTestSuite) RunLookupTests(t *testing.T) {
	t.Run("MissingDirectory", suite.testMissingDirectory)
	t.Run("MissingFile", suite.testMissingFile)
	t.Run("CreateDirectory", suite.testCreateDirectory)
	t.Run("CreateFile", suite.testCreateFile)
	t.Run("CreateExistingFileKeepsContent", suite.testCreateExistingFileKeepsContent)
	t.Run("WrongKind", suite.testWrongKind)
	t.Run("InvalidName", suite.testInvalidName)
}

func (suite *ProviderTestSuite) testMissingDirectory(t *testing.T) {
	root := suite.NewRoot(t)

	_, err := root.GetDirectoryHandle(testContext(), "unknown", provider.GetDirectoryOptions{})
	requireCode(t, err, provider.ErrNotFound)
	assert.Equal(t, `Directory "unknown" not found`, err.Error())
}

func (suite *ProviderTestSuite) testMissingFile(t *testing.T) {
	root := suite.NewRoot(t)

	_, err := root.GetFileHandle(testContext(), "unknown", provider.GetFileOptions{})
	requireCode(t, err, provider.ErrNotFound)
	assert.Equal(t, `File "unknown" not found`, err.Error())
}

func (suite *ProviderTestSuite) testCreateDirectory(t *testing.T) {
	root := suite.NewRoot(t)

	dir := mustDir(t, root, "newlywed")
	assert.Equal(t, provider.KindDirectory, dir.Kind())
	assert.Equal(t, "newlywed", dir.Name())

	again, err := root.GetDirectoryHandle(testContext(), "newlywed", provider.GetDirectoryOptions{Create: true})
	require.NoError(t, err)
	same, err := again.IsSameEntry(testContext(), dir)
	require.NoError(t, err)
	assert.True(t, same)
}

func (suite *ProviderTestSuite) testCreateFile(t *testing.T) {
	root := suite.NewRoot(t)

	file := mustFile(t, root, "newfoundland")
	assert.Equal(t, provider.KindFile, file.Kind())
	assert.Equal(t, "newfoundland", file.Name())

	snap, err := file.GetFile(testContext())
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Size())
	assert.Equal(t, "newfoundland", snap.Name())
}

func (suite *ProviderTestSuite) testCreateExistingFileKeepsContent(t *testing.T) {
	root := suite.NewRoot(t)

	mustWrite(t, mustFile(t, root, "a"), "hello")

	again := mustFile(t, root, "a")
	assert.Equal(t, "hello", mustRead(t, again))
}

func (suite *ProviderTestSuite) testWrongKind(t *testing.T) {
	root := suite.NewRoot(t)
	mustDir(t, root, "dir")
	mustFile(t, root, "file")

	_, err := root.GetFileHandle(testContext(), "dir", provider.GetFileOptions{})
	require.Error(t, err)
	assert.Equal(t, provider.MsgWrongEntryType, err.Error())

	_, err = root.GetDirectoryHandle(testContext(), "file", provider.GetDirectoryOptions{Create: true})
	require.Error(t, err)
	assert.Equal(t, provider.MsgWrongEntryType, err.Error())
}

func (suite *ProviderTestSuite) testInvalidName(t *testing.T) {
	root := suite.NewRoot(t)

	for _, name := range []string{"", ".", "..", "a/b"} {
		_, err := root.GetFileHandle(testContext(), name, provider.GetFileOptions{Create: true})
		requireCode(t, err, provider.ErrInvalidArgument)
	}
}
