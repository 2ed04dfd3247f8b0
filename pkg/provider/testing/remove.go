package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRemoveTests covers RemoveEntry.
func (suite *ProviderTestSuite) RunRemoveTests(t *testing.T) {
	t.Run("MissingEntry", suite.testRemoveMissing)
	t.Run("File", suite.testRemoveFile)
	t.Run("EmptyDirectory", suite.testRemoveEmptyDirectory)
	t.Run("NonEmptyDirectory", suite.testRemoveNonEmptyDirectory)
	t.Run("Recursive", suite.testRemoveRecursive)
}

func (suite *ProviderTestSuite) testRemoveMissing(t *testing.T) {
	root := suite.NewRoot(t)

	for _, recursive := range []bool{false, true} {
		err := root.RemoveEntry(testContext(), "unknown", provider.RemoveOptions{Recursive: recursive})
		requireCode(t, err, provider.ErrNotFound)
		assert.Equal(t, `Entry "unknown" not found`, err.Error())
	}
}

func (suite *ProviderTestSuite) testRemoveFile(t *testing.T) {
	root := suite.NewRoot(t)
	mustWrite(t, mustFile(t, root, "a"), "bytes")

	require.NoError(t, root.RemoveEntry(testContext(), "a", provider.RemoveOptions{}))

	_, err := root.GetFileHandle(testContext(), "a", provider.GetFileOptions{})
	requireCode(t, err, provider.ErrNotFound)
}

func (suite *ProviderTestSuite) testRemoveEmptyDirectory(t *testing.T) {
	root := suite.NewRoot(t)
	mustDir(t, root, "d")

	require.NoError(t, root.RemoveEntry(testContext(), "d", provider.RemoveOptions{}))
	assert.NotContains(t, collectNames(t, root), "d")
}

func (suite *ProviderTestSuite) testRemoveNonEmptyDirectory(t *testing.T) {
	root := suite.NewRoot(t)
	mustFile(t, mustDir(t, root, "first"), "comment")

	err := root.RemoveEntry(testContext(), "first", provider.RemoveOptions{})
	requireCode(t, err, provider.ErrNotEmpty)
	assert.Equal(t, `Directory "first" is not empty`, err.Error())

	assert.Contains(t, collectNames(t, root), "first")
}

func (suite *ProviderTestSuite) testRemoveRecursive(t *testing.T) {
	root := suite.NewRoot(t)
	first := mustDir(t, root, "first")
	mustWrite(t, mustFile(t, first, "comment"), "text")
	nested := mustDir(t, first, "nested")
	mustFile(t, nested, "deep")

	require.NoError(t, root.RemoveEntry(testContext(), "first", provider.RemoveOptions{Recursive: true}))

	_, err := root.GetDirectoryHandle(testContext(), "first", provider.GetDirectoryOptions{})
	requireCode(t, err, provider.ErrNotFound)

	// The name can be reused for a fresh, empty directory.
	again := mustDir(t, root, "first")
	assert.Empty(t, collectNames(t, again))
}
