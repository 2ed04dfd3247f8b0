package registry

import (
	"context"
	"testing"
	"time"

	"github.com/marmos91/fsaccess/pkg/gc"
	contentmemory "github.com/marmos91/fsaccess/pkg/store/content/memory"
	metadatamemory "github.com/marmos91/fsaccess/pkg/store/metadata/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry()
	store, err := contentmemory.NewMemoryContentStore(context.Background(), contentmemory.MemoryContentStoreConfig{})
	require.NoError(t, err)

	require.NoError(t, reg.RegisterMetadataStore("meta", metadatamemory.NewMemoryMetadataStore(metadatamemory.MemoryMetadataStoreConfig{})))
	require.NoError(t, reg.RegisterContentStore("bytes", store))
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func TestRegisterStores(t *testing.T) {
	reg := newTestRegistry(t)

	assert.Error(t, reg.RegisterMetadataStore("meta", metadatamemory.NewMemoryMetadataStore(metadatamemory.MemoryMetadataStoreConfig{})))
	assert.Error(t, reg.RegisterMetadataStore("", metadatamemory.NewMemoryMetadataStore(metadatamemory.MemoryMetadataStoreConfig{})))
	assert.Error(t, reg.RegisterMetadataStore("nil", nil))
	assert.Error(t, reg.RegisterContentStore("bytes", nil))

	assert.Equal(t, []string{"meta"}, reg.ListMetadataStores())
	assert.Equal(t, []string{"bytes"}, reg.ListContentStores())
	assert.Equal(t, 1, reg.CountMetadataStores())
	assert.Equal(t, 1, reg.CountContentStores())

	_, err := reg.GetMetadataStore("meta")
	assert.NoError(t, err)
	_, err = reg.GetContentStore("missing")
	assert.Error(t, err)
}

func TestAddRoot(t *testing.T) {
	ctx := context.Background()

	t.Run("SharedStores", func(t *testing.T) {
		reg := newTestRegistry(t)

		require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/a", MetadataStore: "meta", ContentStore: "bytes", Seed: "sample"}))
		require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/b", MetadataStore: "meta", ContentStore: "bytes", ReadOnly: true}))

		assert.Equal(t, []string{"/a", "/b"}, reg.ListRoots())
		assert.Equal(t, []string{"/a", "/b"}, reg.ListRootsUsingMetadataStore("meta"))
		assert.Equal(t, []string{"/a", "/b"}, reg.ListRootsUsingContentStore("bytes"))
		assert.Empty(t, reg.ListRootsUsingContentStore("other"))
		assert.Equal(t, 2, reg.CountRoots())

		a, err := reg.OpenRoot(ctx, "/a")
		require.NoError(t, err)
		_, err = a.GetFileHandle(ctx, "annar", nil)
		assert.NoError(t, err)

		// Roots on the same store are separate trees.
		b, err := reg.OpenRoot(ctx, "/b")
		require.NoError(t, err)
		_, err = b.GetFileHandle(ctx, "annar", nil)
		assert.Error(t, err)

		root, err := reg.GetRoot("/b")
		require.NoError(t, err)
		assert.True(t, root.ReadOnly)
		assert.Equal(t, "/b", root.Provider().ShareName())
	})

	t.Run("Rejects", func(t *testing.T) {
		reg := newTestRegistry(t)
		require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/a", MetadataStore: "meta", ContentStore: "bytes"}))

		tests := []struct {
			name   string
			config *RootConfig
		}{
			{"Nil", nil},
			{"EmptyName", &RootConfig{MetadataStore: "meta", ContentStore: "bytes"}},
			{"Duplicate", &RootConfig{Name: "/a", MetadataStore: "meta", ContentStore: "bytes"}},
			{"UnknownMetadata", &RootConfig{Name: "/x", MetadataStore: "nope", ContentStore: "bytes"}},
			{"UnknownContent", &RootConfig{Name: "/x", MetadataStore: "meta", ContentStore: "nope"}},
			{"UnknownSeed", &RootConfig{Name: "/x", MetadataStore: "meta", ContentStore: "bytes", Seed: "big"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Error(t, reg.AddRoot(ctx, tt.config))
			})
		}
		assert.Equal(t, 1, reg.CountRoots())
	})

	t.Run("Remove", func(t *testing.T) {
		reg := newTestRegistry(t)
		require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/a", MetadataStore: "meta", ContentStore: "bytes"}))

		require.NoError(t, reg.RemoveRoot("/a"))
		assert.False(t, reg.RootExists("/a"))
		assert.Error(t, reg.RemoveRoot("/a"))

		_, err := reg.OpenRoot(ctx, "/a")
		assert.Error(t, err)
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)
	require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/a", MetadataStore: "meta", ContentStore: "bytes"}))

	require.NoError(t, reg.Close())
	require.NoError(t, reg.Close())
	assert.Equal(t, 0, reg.CountRoots())
	assert.Error(t, reg.AddRoot(ctx, &RootConfig{Name: "/b", MetadataStore: "meta", ContentStore: "bytes"}))
}

func TestCollectors(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry(t)
	spare, err := contentmemory.NewMemoryContentStore(ctx, contentmemory.MemoryContentStoreConfig{})
	require.NoError(t, err)
	require.NoError(t, reg.RegisterContentStore("spare", spare))
	require.NoError(t, spare.WriteContent(ctx, "unreferenced", []byte("x")))

	require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/a", MetadataStore: "meta", ContentStore: "bytes", Seed: "sample"}))

	store, err := reg.GetContentStore("bytes")
	require.NoError(t, err)
	require.NoError(t, store.WriteContent(ctx, "leaked", []byte("x")))

	require.NoError(t, reg.StartCollectors(gc.Config{Enabled: true, Interval: time.Hour}))
	require.NoError(t, reg.StartCollectors(gc.Config{}), "existing collectors are kept")

	stats, err := reg.CollectGarbage(ctx, "bytes")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.ExistingCount)
	assert.Equal(t, uint64(1), stats.DeletedCount)

	exists, err := store.ContentExists(ctx, "leaked")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = reg.CollectGarbage(ctx, "spare")
	assert.Error(t, err, "stores without roots get no collector")

	require.NoError(t, reg.Close())
	assert.Error(t, reg.StartCollectors(gc.Config{}))
}

func TestGetAllContentIDs(t *testing.T) {
	ctx := context.Background()

	reg := newTestRegistry(t)
	require.NoError(t, reg.RegisterMetadataStore("other", metadatamemory.NewMemoryMetadataStore(metadatamemory.MemoryMetadataStoreConfig{})))
	require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/a", MetadataStore: "meta", ContentStore: "bytes", Seed: "sample"}))
	require.NoError(t, reg.AddRoot(ctx, &RootConfig{Name: "/b", MetadataStore: "other", ContentStore: "bytes", Seed: "sample"}))

	ids, err := reg.GetAllContentIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2, "one sample text per root")
}
