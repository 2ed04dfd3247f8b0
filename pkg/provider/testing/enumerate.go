package testing

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEnumerateTests covers Entries.
func (suite *ProviderTestSuite) RunEnumerateTests(t *testing.T) {
	t.Run("Empty", suite.testEnumerateEmpty)
	t.Run("Kinds", suite.testEnumerateKinds)
	t.Run("ManyEntries", suite.testEnumerateMany)
	t.Run("FreshSequence", suite.testEnumerateFresh)
	t.Run("ChildHandlesWork", suite.testEnumerateChildHandles)
}

func (suite *ProviderTestSuite) testEnumerateEmpty(t *testing.T) {
	root := suite.NewRoot(t)

	it, err := root.Entries(testContext())
	require.NoError(t, err)
	defer it.Close()

	_, err = it.Next(testContext())
	assert.ErrorIs(t, err, io.EOF)
}

func (suite *ProviderTestSuite) testEnumerateKinds(t *testing.T) {
	root := suite.NewRoot(t)
	mustDir(t, root, "first")
	mustFile(t, root, "annar")

	assert.Equal(t, map[string]provider.Kind{
		"first": provider.KindDirectory,
		"annar": provider.KindFile,
	}, collectNames(t, root))
}

func (suite *ProviderTestSuite) testEnumerateMany(t *testing.T) {
	root := suite.NewRoot(t)

	const total = 300
	for i := 0; i < total; i++ {
		mustFile(t, root, fmt.Sprintf("f%03d", i))
	}

	names := collectNames(t, root)
	assert.Len(t, names, total)
}

func (suite *ProviderTestSuite) testEnumerateFresh(t *testing.T) {
	root := suite.NewRoot(t)
	mustFile(t, root, "a")

	first, err := root.Entries(testContext())
	require.NoError(t, err)
	defer first.Close()

	_, err = first.Next(testContext())
	require.NoError(t, err)
	_, err = first.Next(testContext())
	require.True(t, errors.Is(err, io.EOF))

	// A new call starts over.
	assert.Len(t, collectNames(t, root), 1)
}

func (suite *ProviderTestSuite) testEnumerateChildHandles(t *testing.T) {
	root := suite.NewRoot(t)
	mustFile(t, mustDir(t, root, "first"), "comment")

	it, err := root.Entries(testContext())
	require.NoError(t, err)
	defer it.Close()

	entry, err := it.Next(testContext())
	require.NoError(t, err)

	dir, ok := entry.Handle.(provider.DirectoryHandle)
	require.True(t, ok, "directory entries must be directory handles, got %T", entry.Handle)
	assert.Equal(t, map[string]provider.Kind{"comment": provider.KindFile}, collectNames(t, dir))
}
