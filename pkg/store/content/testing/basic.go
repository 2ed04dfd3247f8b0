package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBasicTests executes all basic ContentStore operation tests.
func (suite *StoreTestSuite) RunBasicTests(t *testing.T) {
	t.Run("ReadContent_NotFound", suite.testReadContentNotFound)
	t.Run("ReadContent_Success", suite.testReadContentSuccess)
	t.Run("ReadContent_EmptyContent", suite.testReadContentEmpty)
	t.Run("ReadContent_LargeContent", suite.testReadContentLarge)
	t.Run("GetContentSize_NotFound", suite.testGetContentSizeNotFound)
	t.Run("GetContentSize_Success", suite.testGetContentSizeSuccess)
	t.Run("ContentExists", suite.testContentExists)
}

// ============================================================================
// ReadContent Tests
// ============================================================================

func (suite *StoreTestSuite) testReadContentNotFound(t *testing.T) {
	store := suite.NewStore()

	_, err := store.ReadContent(testContext(), generateTestID("nonexistent"))
	AssertErrorIs(t, content.ErrContentNotFound, err)
}

func (suite *StoreTestSuite) testReadContentSuccess(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("read-success")
	testData := []byte("Hello, World!")
	mustWriteContent(t, store, id, testData)

	assert.Equal(t, testData, mustReadContent(t, store, id))
}

func (suite *StoreTestSuite) testReadContentEmpty(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("empty")
	mustWriteContent(t, store, id, []byte{})

	assert.Empty(t, mustReadContent(t, store, id))
}

func (suite *StoreTestSuite) testReadContentLarge(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("large")
	testData := generateTestData(1 << 20)
	mustWriteContent(t, store, id, testData)

	assert.Equal(t, testData, mustReadContent(t, store, id))
}

// ============================================================================
// Size and Existence Tests
// ============================================================================

func (suite *StoreTestSuite) testGetContentSizeNotFound(t *testing.T) {
	store := suite.NewStore()

	_, err := store.GetContentSize(testContext(), generateTestID("missing"))
	AssertErrorIs(t, content.ErrContentNotFound, err)
}

func (suite *StoreTestSuite) testGetContentSizeSuccess(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("size")
	mustWriteContent(t, store, id, generateTestData(123))

	size, err := store.GetContentSize(testContext(), id)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), size)
}

func (suite *StoreTestSuite) testContentExists(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("exists")

	exists, err := store.ContentExists(testContext(), id)
	require.NoError(t, err)
	assert.False(t, exists)

	mustWriteContent(t, store, id, []byte("x"))

	exists, err = store.ContentExists(testContext(), id)
	require.NoError(t, err)
	assert.True(t, exists)
}
