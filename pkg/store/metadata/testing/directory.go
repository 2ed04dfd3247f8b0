package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDirectoryTests executes directory listing tests.
func (suite *StoreTestSuite) RunDirectoryTests(t *testing.T) {
	t.Run("ReadDirectory", suite.testReadDirectory)
	t.Run("Pagination", suite.testReadDirectoryPagination)
}

func (suite *StoreTestSuite) testReadDirectory(test *testing.T) {
	test.Run("Empty", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		page, err := store.ReadDirectory(context.Background(), rootHandle, "", 0)
		require.NoError(t, err)
		assert.Empty(t, page.Entries)
		assert.False(t, page.HasMore)
	})

	test.Run("SortedByName", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		createTestFile(t, store, rootHandle, "zeta")
		createTestDirectory(t, store, rootHandle, "alpha")
		createTestFile(t, store, rootHandle, "mid")

		page, err := store.ReadDirectory(context.Background(), rootHandle, "", 0)
		require.NoError(t, err)
		require.Len(t, page.Entries, 3)

		assert.Equal(t, "alpha", page.Entries[0].Name)
		assert.Equal(t, metadata.FileTypeDirectory, page.Entries[0].Type)
		assert.Equal(t, "mid", page.Entries[1].Name)
		assert.Equal(t, "zeta", page.Entries[2].Name)
		assert.Equal(t, metadata.FileTypeRegular, page.Entries[2].Type)
	})

	test.Run("HandlesResolve", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a")

		page, err := store.ReadDirectory(context.Background(), rootHandle, "", 0)
		require.NoError(t, err)
		require.Len(t, page.Entries, 1)
		assert.Equal(t, fileHandle, page.Entries[0].Handle)
		assert.Equal(t, "a", mustGetFile(t, store, page.Entries[0].Handle).Name)
	})

	test.Run("NotDirectory", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a")

		_, err := store.ReadDirectory(context.Background(), fileHandle, "", 0)
		requireCode(t, err, metadata.ErrNotDirectory)
	})
}

func (suite *StoreTestSuite) testReadDirectoryPagination(test *testing.T) {
	test.Run("WalksAllPages", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		const total = 25
		for i := 0; i < total; i++ {
			createTestFile(t, store, rootHandle, fmt.Sprintf("file-%02d", i))
		}

		var names []string
		token := ""
		pages := 0
		for {
			page, err := store.ReadDirectory(context.Background(), rootHandle, token, 10)
			require.NoError(t, err)
			pages++
			for _, e := range page.Entries {
				names = append(names, e.Name)
			}
			if !page.HasMore {
				break
			}
			assert.Len(t, page.Entries, 10)
			token = page.NextToken
		}

		assert.Equal(t, 3, pages)
		require.Len(t, names, total)
		for i, name := range names {
			assert.Equal(t, fmt.Sprintf("file-%02d", i), name)
		}
	})

	test.Run("ExactPageHasNoMore", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		for i := 0; i < 4; i++ {
			createTestFile(t, store, rootHandle, fmt.Sprintf("f%d", i))
		}

		page, err := store.ReadDirectory(context.Background(), rootHandle, "", 4)
		require.NoError(t, err)
		assert.Len(t, page.Entries, 4)
		assert.False(t, page.HasMore)
	})

	test.Run("StableAcrossRemoval", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		for _, name := range []string{"a", "b", "c", "d"} {
			createTestFile(t, store, rootHandle, name)
		}

		page, err := store.ReadDirectory(context.Background(), rootHandle, "", 2)
		require.NoError(t, err)
		require.True(t, page.HasMore)
		assert.Equal(t, "b", page.NextToken)

		// Removing the token entry must not disturb the next page.
		_, err = store.Remove(context.Background(), rootHandle, "b")
		require.NoError(t, err)

		next, err := store.ReadDirectory(context.Background(), rootHandle, page.NextToken, 2)
		require.NoError(t, err)
		require.Len(t, next.Entries, 2)
		assert.Equal(t, "c", next.Entries[0].Name)
		assert.Equal(t, "d", next.Entries[1].Name)
		assert.False(t, next.HasMore)
	})
}
