package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunIdentityTests covers IsSameEntry and permissions.
func (suite *ProviderTestSuite) RunIdentityTests(t *testing.T) {
	t.Run("SameEntry", suite.testSameEntry)
	t.Run("NullEntry", suite.testNullEntry)
	t.Run("Permissions", suite.testPermissions)
}

type plainRef struct {
	kind provider.Kind
	name string
}

func (r plainRef) Kind() provider.Kind { return r.kind }
func (r plainRef) Name() string        { return r.name }

func (suite *ProviderTestSuite) testSameEntry(t *testing.T) {
	root := suite.NewRoot(t)
	a := mustFile(t, root, "a")
	b := mustFile(t, root, "b")
	ctx := testContext()

	again, err := root.GetFileHandle(ctx, "a", provider.GetFileOptions{})
	require.NoError(t, err)

	same, err := a.IsSameEntry(ctx, again)
	require.NoError(t, err)
	assert.True(t, same)

	same, err = a.IsSameEntry(ctx, b)
	require.NoError(t, err)
	assert.False(t, same)

	same, err = a.IsSameEntry(ctx, plainRef{kind: provider.KindFile, name: "a"})
	require.NoError(t, err)
	assert.True(t, same)

	same, err = a.IsSameEntry(ctx, plainRef{kind: provider.KindDirectory, name: "a"})
	require.NoError(t, err)
	assert.False(t, same)
}

func (suite *ProviderTestSuite) testNullEntry(t *testing.T) {
	root := suite.NewRoot(t)

	_, err := root.IsSameEntry(testContext(), nil)
	requireCode(t, err, provider.ErrInvalidArgument)
}

func (suite *ProviderTestSuite) testPermissions(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	ctx := testContext()

	for _, h := range []provider.Handle{root, file} {
		state, err := h.QueryPermission(ctx, provider.PermissionDescriptor{Mode: provider.PermissionRead})
		require.NoError(t, err)
		assert.Contains(t, []provider.PermissionState{
			provider.PermissionGranted, provider.PermissionDenied, provider.PermissionPrompt,
		}, state)

		state, err = h.RequestPermission(ctx, provider.PermissionDescriptor{Mode: provider.PermissionReadWrite})
		require.NoError(t, err)
		assert.Contains(t, []provider.PermissionState{
			provider.PermissionGranted, provider.PermissionDenied, provider.PermissionPrompt,
		}, state)
	}
}
