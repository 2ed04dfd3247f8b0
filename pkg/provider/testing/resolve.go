package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResolveTests covers Resolve.
func (suite *ProviderTestSuite) RunResolveTests(t *testing.T) {
	t.Run("Descendant", suite.testResolveDescendant)
	t.Run("Self", suite.testResolveSelf)
	t.Run("NotDescendant", suite.testResolveNotDescendant)
	t.Run("Null", suite.testResolveNull)
}

func (suite *ProviderTestSuite) testResolveDescendant(t *testing.T) {
	root := suite.NewRoot(t)
	a := mustDir(t, root, "a")
	b := mustDir(t, a, "b")
	c := mustFile(t, b, "c")

	path, err := root.Resolve(testContext(), c)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, path)

	path, err = a.Resolve(testContext(), c)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, path)
}

func (suite *ProviderTestSuite) testResolveSelf(t *testing.T) {
	root := suite.NewRoot(t)
	a := mustDir(t, root, "a")

	path, err := a.Resolve(testContext(), a)
	require.NoError(t, err)
	assert.NotNil(t, path)
	assert.Empty(t, path)
}

func (suite *ProviderTestSuite) testResolveNotDescendant(t *testing.T) {
	root := suite.NewRoot(t)
	a := mustDir(t, root, "a")
	sibling := mustFile(t, root, "sibling")

	path, err := a.Resolve(testContext(), sibling)
	require.NoError(t, err)
	assert.Nil(t, path)

	path, err = a.Resolve(testContext(), root)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func (suite *ProviderTestSuite) testResolveNull(t *testing.T) {
	root := suite.NewRoot(t)

	_, err := root.Resolve(testContext(), nil)
	requireCode(t, err, provider.ErrInvalidArgument)
}
