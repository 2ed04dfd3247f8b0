package fs

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/marmos91/fsaccess/pkg/store/content"
	contenttesting "github.com/marmos91/fsaccess/pkg/store/content/testing"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSContentStore_Memfs(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.ContentStore {
			return NewFSContentStoreWithFilesystem(memfs.New(), 0)
		},
	}
	suite.Run(t)
}

func TestFSContentStore_OS(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func() content.ContentStore {
			store, err := NewFSContentStore(context.Background(), FSContentStoreConfig{Path: t.TempDir()})
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}

func TestFSContentStore_RequiresPath(t *testing.T) {
	_, err := NewFSContentStore(context.Background(), FSContentStoreConfig{})
	assert.Error(t, err)
}

func TestFSContentStore_ShardedLayout(t *testing.T) {
	fsys := memfs.New()
	store := NewFSContentStoreWithFilesystem(fsys, 0)

	require.NoError(t, store.WriteContent(context.Background(), "abcdef", []byte("x")))

	info, err := fsys.Stat("ab/abcdef")
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Size())
}

func TestFSContentStore_InvalidContentID(t *testing.T) {
	store := NewFSContentStoreWithFilesystem(memfs.New(), 0)

	for _, id := range []metadata.ContentID{"", "..", "a/b", `a\b`} {
		err := store.WriteContent(context.Background(), id, []byte("x"))
		assert.ErrorIs(t, err, content.ErrInvalidContentID, "id %q", id)
	}
}
