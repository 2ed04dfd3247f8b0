package testing

import (
	"context"
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRootTests executes share root tests.
func (suite *StoreTestSuite) RunRootTests(t *testing.T) {
	t.Run("CreateRootDirectory", suite.testCreateRootDirectory)
	t.Run("GetRootHandle", suite.testGetRootHandle)
	t.Run("Healthcheck", suite.testHealthcheck)
}

// ============================================================================
// CreateRootDirectory Tests
// ============================================================================

func (suite *StoreTestSuite) testCreateRootDirectory(test *testing.T) {
	test.Run("CreatesDirectory", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		root, err := store.CreateRootDirectory(context.Background(), "/data", DefaultRootDirAttr())
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeDirectory, root.Type)
		assert.Equal(t, "/data", root.ShareName)
		assert.True(t, root.IsRoot())
		assert.False(t, root.Mtime.IsZero())
	})

	test.Run("ForcesDirectoryType", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		root, err := store.CreateRootDirectory(context.Background(), "/data", DefaultFileAttr())
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeDirectory, root.Type)
	})

	test.Run("Idempotent", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		first, err := store.CreateRootDirectory(context.Background(), "/data", DefaultRootDirAttr())
		require.NoError(t, err)

		second, err := store.CreateRootDirectory(context.Background(), "/data", &metadata.FileAttr{Mode: 0o700})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Mode, second.Mode)
	})

	test.Run("IndependentShares", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		a, _ := createTestShare(t, store, "/a")
		b, _ := createTestShare(t, store, "/b")
		assert.NotEqual(t, a.ID, b.ID)
	})

	test.Run("InvalidShareName", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		_, err := store.CreateRootDirectory(context.Background(), "", DefaultRootDirAttr())
		assert.Error(t, err)

		_, err = store.CreateRootDirectory(context.Background(), "bad:name", DefaultRootDirAttr())
		assert.Error(t, err)
	})

	test.Run("CancelledContext", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		_, err := store.CreateRootDirectory(cancelledContext(), "/data", DefaultRootDirAttr())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// ============================================================================
// GetRootHandle Tests
// ============================================================================

func (suite *StoreTestSuite) testGetRootHandle(test *testing.T) {
	test.Run("MatchesRoot", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		root, handle := createTestShare(t, store, "/data")

		expected, err := metadata.EncodeFileHandle(root)
		require.NoError(t, err)
		assert.Equal(t, expected, handle)

		got := mustGetFile(t, store, handle)
		assert.Equal(t, root.ID, got.ID)
	})

	test.Run("UnknownShare", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		_, err := store.GetRootHandle(context.Background(), "/missing")
		requireCode(t, err, metadata.ErrNotFound)
	})
}

func (suite *StoreTestSuite) testHealthcheck(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	assert.NoError(t, store.Healthcheck(context.Background()))
	assert.Error(t, store.Healthcheck(cancelledContext()))
}
