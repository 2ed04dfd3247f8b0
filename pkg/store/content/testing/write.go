package testing

import (
	"math"
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunWriteTests executes all write operation tests.
func (suite *StoreTestSuite) RunWriteTests(t *testing.T) {
	t.Run("WriteContent_Replaces", suite.testWriteContentReplaces)
	t.Run("WriteAt_CreatesContent", suite.testWriteAtCreates)
	t.Run("WriteAt_Overwrite", suite.testWriteAtOverwrite)
	t.Run("WriteAt_SparseGap", suite.testWriteAtSparseGap)
	t.Run("WriteAt_InvalidOffset", suite.testWriteAtInvalidOffset)
	t.Run("WriteAt_OffsetTooLarge", suite.testWriteAtOffsetTooLarge)
	t.Run("Truncate_Shrink", suite.testTruncateShrink)
	t.Run("Truncate_Extend", suite.testTruncateExtend)
	t.Run("Truncate_NotFound", suite.testTruncateNotFound)
	t.Run("Truncate_SizeTooLarge", suite.testTruncateSizeTooLarge)
	t.Run("Delete_Idempotent", suite.testDeleteIdempotent)
}

// ============================================================================
// WriteContent / WriteAt Tests
// ============================================================================

func (suite *StoreTestSuite) testWriteContentReplaces(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("replace")
	mustWriteContent(t, store, id, []byte("first version, longer"))
	mustWriteContent(t, store, id, []byte("second"))

	assert.Equal(t, []byte("second"), mustReadContent(t, store, id))
}

func (suite *StoreTestSuite) testWriteAtCreates(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("create")
	require.NoError(t, store.WriteAt(testContext(), id, []byte("hello"), 0))

	assert.Equal(t, []byte("hello"), mustReadContent(t, store, id))
}

func (suite *StoreTestSuite) testWriteAtOverwrite(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("overwrite")
	mustWriteContent(t, store, id, []byte("hello world"))
	require.NoError(t, store.WriteAt(testContext(), id, []byte("WORLD"), 6))
	require.NoError(t, store.WriteAt(testContext(), id, []byte("J"), 0))

	assert.Equal(t, []byte("Jello WORLD"), mustReadContent(t, store, id))
}

func (suite *StoreTestSuite) testWriteAtSparseGap(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("sparse")
	mustWriteContent(t, store, id, []byte("ab"))
	require.NoError(t, store.WriteAt(testContext(), id, []byte("z"), 5))

	assert.Equal(t, []byte{'a', 'b', 0, 0, 0, 'z'}, mustReadContent(t, store, id))
}

func (suite *StoreTestSuite) testWriteAtInvalidOffset(t *testing.T) {
	store := suite.NewStore()

	err := store.WriteAt(testContext(), generateTestID("negative"), []byte("x"), -1)
	AssertErrorIs(t, content.ErrInvalidOffset, err)
}

func (suite *StoreTestSuite) testWriteAtOffsetTooLarge(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("huge-offset")
	for _, offset := range []int64{content.MaxContentSize, 1 << 62, math.MaxInt64} {
		err := store.WriteAt(testContext(), id, []byte("x"), offset)
		AssertErrorIs(t, content.ErrInvalidSize, err)
	}

	exists, err := store.ContentExists(testContext(), id)
	require.NoError(t, err)
	assert.False(t, exists)
}

// ============================================================================
// Truncate Tests
// ============================================================================

func (suite *StoreTestSuite) testTruncateShrink(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("shrink")
	mustWriteContent(t, store, id, []byte("0123456789"))
	require.NoError(t, store.Truncate(testContext(), id, 4))

	assert.Equal(t, []byte("0123"), mustReadContent(t, store, id))
}

func (suite *StoreTestSuite) testTruncateExtend(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("extend")
	mustWriteContent(t, store, id, []byte("ab"))
	require.NoError(t, store.Truncate(testContext(), id, 4))

	assert.Equal(t, []byte{'a', 'b', 0, 0}, mustReadContent(t, store, id))

	size, err := store.GetContentSize(testContext(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), size)
}

func (suite *StoreTestSuite) testTruncateNotFound(t *testing.T) {
	store := suite.NewStore()

	err := store.Truncate(testContext(), generateTestID("missing"), 1)
	AssertErrorIs(t, content.ErrContentNotFound, err)
}

func (suite *StoreTestSuite) testTruncateSizeTooLarge(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("huge-truncate")
	mustWriteContent(t, store, id, []byte("keep"))

	err := store.Truncate(testContext(), id, 1<<62)
	AssertErrorIs(t, content.ErrInvalidSize, err)
	assert.Equal(t, []byte("keep"), mustReadContent(t, store, id))
}

// ============================================================================
// Delete Tests
// ============================================================================

func (suite *StoreTestSuite) testDeleteIdempotent(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("delete")
	mustWriteContent(t, store, id, []byte("bye"))

	require.NoError(t, store.Delete(testContext(), id))
	require.NoError(t, store.Delete(testContext(), id))

	exists, err := store.ContentExists(testContext(), id)
	require.NoError(t, err)
	assert.False(t, exists)
}
