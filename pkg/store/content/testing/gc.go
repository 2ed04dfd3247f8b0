package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGarbageCollectionTests exercises GarbageCollectableStore. Stores that
// do not implement it skip the group.
func (suite *StoreTestSuite) RunGarbageCollectionTests(t *testing.T) {
	if _, ok := suite.NewStore().(content.GarbageCollectableStore); !ok {
		t.Skip("store does not implement GarbageCollectableStore")
	}

	t.Run("ListAllContent_Empty", suite.testListAllContentEmpty)
	t.Run("ListAllContent", suite.testListAllContent)
	t.Run("DeleteBatch", suite.testDeleteBatch)
	t.Run("DeleteBatch_Missing", suite.testDeleteBatchMissing)
}

func (suite *StoreTestSuite) newGCStore(t *testing.T) content.GarbageCollectableStore {
	t.Helper()
	store, ok := suite.NewStore().(content.GarbageCollectableStore)
	require.True(t, ok)
	return store
}

func (suite *StoreTestSuite) testListAllContentEmpty(t *testing.T) {
	store := suite.newGCStore(t)

	ids, err := store.ListAllContent(testContext())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func (suite *StoreTestSuite) testListAllContent(t *testing.T) {
	store := suite.newGCStore(t)

	a := generateTestID("a")
	b := generateTestID("b")
	empty := generateTestID("empty")
	mustWriteContent(t, store, a, generateTestData(10))
	mustWriteContent(t, store, b, generateTestData(20))
	mustWriteContent(t, store, empty, nil)

	ids, err := store.ListAllContent(testContext())
	require.NoError(t, err)
	assert.ElementsMatch(t, []metadata.ContentID{a, b, empty}, ids)
}

func (suite *StoreTestSuite) testDeleteBatch(t *testing.T) {
	store := suite.newGCStore(t)

	keep := generateTestID("keep")
	drop1 := generateTestID("drop1")
	drop2 := generateTestID("drop2")
	for _, id := range []metadata.ContentID{keep, drop1, drop2} {
		mustWriteContent(t, store, id, generateTestData(5))
	}

	failures, err := store.DeleteBatch(testContext(), []metadata.ContentID{drop1, drop2})
	require.NoError(t, err)
	assert.Empty(t, failures)

	ids, err := store.ListAllContent(testContext())
	require.NoError(t, err)
	assert.Equal(t, []metadata.ContentID{keep}, ids)

	exists, err := store.ContentExists(testContext(), drop1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func (suite *StoreTestSuite) testDeleteBatchMissing(t *testing.T) {
	store := suite.newGCStore(t)

	failures, err := store.DeleteBatch(testContext(), []metadata.ContentID{generateTestID("ghost")})
	require.NoError(t, err)
	assert.Empty(t, failures)
}
