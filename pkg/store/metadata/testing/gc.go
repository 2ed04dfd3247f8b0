package testing

import (
	"context"
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContentReferenceTests checks GetAllContentIDs.
func (suite *StoreTestSuite) RunContentReferenceTests(test *testing.T) {
	test.Run("GetAllContentIDs_Empty", suite.testGetAllContentIDsEmpty)
	test.Run("GetAllContentIDs_AcrossShares", suite.testGetAllContentIDsAcrossShares)
	test.Run("GetAllContentIDs_FollowsUpdates", suite.testGetAllContentIDsFollowsUpdates)
	test.Run("GetAllContentIDs_Cancelled", suite.testGetAllContentIDsCancelled)
}

func (suite *StoreTestSuite) testGetAllContentIDsEmpty(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	createTestShare(t, store, "/export")

	ids, err := store.GetAllContentIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func (suite *StoreTestSuite) testGetAllContentIDsAcrossShares(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	_, a := createTestShare(t, store, "/a")
	_, b := createTestShare(t, store, "/b")

	for parent, id := range map[metadata.FileHandle]metadata.ContentID{a: "content-a", b: "content-b"} {
		attr := DefaultFileAttr()
		attr.ContentID = id
		_, err := store.Create(ctx, parent, "file", attr)
		require.NoError(t, err)
	}

	// A second reference to the same content is reported once
	attr := DefaultFileAttr()
	attr.ContentID = "content-a"
	_, err := store.Create(ctx, a, "copy", attr)
	require.NoError(t, err)

	// Files without content and directories contribute nothing
	createTestFile(t, store, a, "empty")
	createTestDirectory(t, store, b, "dir")

	ids, err := store.GetAllContentIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []metadata.ContentID{"content-a", "content-b"}, ids)
}

func (suite *StoreTestSuite) testGetAllContentIDsFollowsUpdates(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()
	ctx := context.Background()

	_, root := createTestShare(t, store, "/export")
	file := createTestFile(t, store, root, "doc")

	_, err := store.SetFileAttributes(ctx, file, &metadata.SetAttrs{ContentID: metadata.ContentIDPtr("v1")})
	require.NoError(t, err)
	_, err = store.SetFileAttributes(ctx, file, &metadata.SetAttrs{ContentID: metadata.ContentIDPtr("v2")})
	require.NoError(t, err)

	ids, err := store.GetAllContentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []metadata.ContentID{"v2"}, ids)

	_, err = store.Remove(ctx, root, "doc")
	require.NoError(t, err)

	ids, err = store.GetAllContentIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func (suite *StoreTestSuite) testGetAllContentIDsCancelled(t *testing.T) {
	store := suite.NewStore()
	defer store.Close()

	_, err := store.GetAllContentIDs(cancelledContext())
	assert.ErrorIs(t, err, context.Canceled)
}
