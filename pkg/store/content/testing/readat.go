package testing

import (
	"context"
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReadAtTests executes range read tests.
func (suite *StoreTestSuite) RunReadAtTests(t *testing.T) {
	t.Run("ReadAt_Window", suite.testReadAtWindow)
	t.Run("ReadAt_ShortAtEnd", suite.testReadAtShortAtEnd)
	t.Run("ReadAt_PastEnd", suite.testReadAtPastEnd)
	t.Run("ReadAt_ZeroLength", suite.testReadAtZeroLength)
	t.Run("ReadAt_NotFound", suite.testReadAtNotFound)
	t.Run("ReadAt_InvalidArguments", suite.testReadAtInvalidArguments)
	t.Run("ReadAt_Cancelled", suite.testReadAtCancelled)
}

func (suite *StoreTestSuite) testReadAtWindow(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("window")
	mustWriteContent(t, store, id, []byte("0123456789"))

	data, err := store.ReadAt(testContext(), id, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("3456"), data)
}

func (suite *StoreTestSuite) testReadAtShortAtEnd(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("short")
	mustWriteContent(t, store, id, []byte("0123456789"))

	data, err := store.ReadAt(testContext(), id, 7, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("789"), data)
}

func (suite *StoreTestSuite) testReadAtPastEnd(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("past-end")
	mustWriteContent(t, store, id, []byte("abc"))

	data, err := store.ReadAt(testContext(), id, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, data)

	data, err = store.ReadAt(testContext(), id, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func (suite *StoreTestSuite) testReadAtZeroLength(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("zero")
	mustWriteContent(t, store, id, []byte("abc"))

	data, err := store.ReadAt(testContext(), id, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func (suite *StoreTestSuite) testReadAtNotFound(t *testing.T) {
	store := suite.NewStore()

	_, err := store.ReadAt(testContext(), generateTestID("missing"), 0, 10)
	AssertErrorIs(t, content.ErrContentNotFound, err)
}

func (suite *StoreTestSuite) testReadAtInvalidArguments(t *testing.T) {
	store := suite.NewStore()

	id := generateTestID("invalid")
	mustWriteContent(t, store, id, []byte("abc"))

	_, err := store.ReadAt(testContext(), id, -1, 1)
	AssertErrorIs(t, content.ErrInvalidOffset, err)

	_, err = store.ReadAt(testContext(), id, 0, -1)
	AssertErrorIs(t, content.ErrInvalidSize, err)
}

func (suite *StoreTestSuite) testReadAtCancelled(t *testing.T) {
	store := suite.NewStore()

	ctx, cancel := context.WithCancel(testContext())
	cancel()

	_, err := store.ReadAt(ctx, generateTestID("cancelled"), 0, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
