package gc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/provider/backend"
	"github.com/marmos91/fsaccess/pkg/store/content"
	contentmemory "github.com/marmos91/fsaccess/pkg/store/content/memory"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	metadatamemory "github.com/marmos91/fsaccess/pkg/store/metadata/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRefs []metadata.ContentID

func (r staticRefs) GetAllContentIDs(ctx context.Context) ([]metadata.ContentID, error) {
	return r, nil
}

type failingRefs struct{}

func (failingRefs) GetAllContentIDs(ctx context.Context) ([]metadata.ContentID, error) {
	return nil, errors.New("scan failed")
}

// plainStore hides the garbage collection methods of the store it wraps.
type plainStore struct {
	content.ContentStore
}

func newStore(t *testing.T, ids ...metadata.ContentID) *contentmemory.MemoryContentStore {
	t.Helper()

	store, err := contentmemory.NewMemoryContentStore(context.Background(), contentmemory.MemoryContentStoreConfig{})
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, store.WriteContent(context.Background(), id, []byte(id)))
	}
	return store
}

func listed(t *testing.T, store content.GarbageCollectableStore) []metadata.ContentID {
	t.Helper()

	ids, err := store.ListAllContent(context.Background())
	require.NoError(t, err)
	return ids
}

func TestNewCollector(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c, err := NewCollector(newStore(t), staticRefs{}, nil, Config{})
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, c.config.Interval)
		assert.Equal(t, 1000, c.config.BatchSize)
	})

	t.Run("RequiresGarbageCollectableStore", func(t *testing.T) {
		_, err := NewCollector(plainStore{newStore(t)}, staticRefs{}, nil, Config{})
		assert.ErrorContains(t, err, "GarbageCollectableStore")
	})

	t.Run("RequiresReferences", func(t *testing.T) {
		_, err := NewCollector(newStore(t), nil, nil, Config{})
		assert.Error(t, err)
	})
}

func TestCollector_RunNow(t *testing.T) {
	ctx := context.Background()

	t.Run("DeletesOrphans", func(t *testing.T) {
		store := newStore(t, "kept", "orphan-1", "orphan-2", "staged")
		tracker := NewTracker()
		tracker.Track("staged")

		c, err := NewCollector(store, staticRefs{"kept", "missing"}, tracker, Config{BatchSize: 1})
		require.NoError(t, err)

		stats, err := c.RunNow(ctx)
		require.NoError(t, err)

		assert.Equal(t, uint64(4), stats.ExistingCount)
		assert.Equal(t, uint64(1), stats.PendingCount)
		assert.Equal(t, uint64(2), stats.ReferencedCount)
		assert.Equal(t, uint64(2), stats.OrphanedCount)
		assert.Equal(t, uint64(2), stats.DeletedCount)
		assert.Zero(t, stats.FailedCount)
		assert.Equal(t, []metadata.ContentID{"kept", "staged"}, listed(t, store))
	})

	t.Run("DryRun", func(t *testing.T) {
		store := newStore(t, "orphan")

		c, err := NewCollector(store, staticRefs{}, nil, Config{DryRun: true})
		require.NoError(t, err)

		stats, err := c.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), stats.OrphanedCount)
		assert.Zero(t, stats.DeletedCount)
		assert.Equal(t, []metadata.ContentID{"orphan"}, listed(t, store))
	})

	t.Run("ReferenceFailureDeletesNothing", func(t *testing.T) {
		store := newStore(t, "a")

		c, err := NewCollector(store, failingRefs{}, nil, Config{})
		require.NoError(t, err)

		_, err = c.RunNow(ctx)
		assert.ErrorContains(t, err, "scan failed")
		assert.Equal(t, []metadata.ContentID{"a"}, listed(t, store))
	})

	t.Run("Cancelled", func(t *testing.T) {
		c, err := NewCollector(newStore(t, "a"), staticRefs{}, nil, Config{})
		require.NoError(t, err)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = c.RunNow(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// TestCollector_Backend runs the collector against a live provider: open
// streams and files keep their content, leaked content goes.
func TestCollector_Backend(t *testing.T) {
	ctx := context.Background()

	store := newStore(t)
	meta := metadatamemory.NewMemoryMetadataStore(metadatamemory.MemoryMetadataStoreConfig{})
	tracker := NewTracker()

	p, err := backend.New(ctx, meta, store, backend.Config{Tracker: tracker})
	require.NoError(t, err)
	require.NoError(t, backend.SeedSample(ctx, p))

	root, err := p.Root(ctx)
	require.NoError(t, err)
	fh, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{})
	require.NoError(t, err)
	stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{KeepExistingData: true})
	require.NoError(t, err)

	require.NoError(t, store.WriteContent(ctx, "leaked", []byte("x")))

	c, err := NewCollector(store, meta, tracker, Config{})
	require.NoError(t, err)

	stats, err := c.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.ExistingCount)
	assert.Equal(t, uint64(1), stats.DeletedCount)
	assert.NotContains(t, listed(t, store), metadata.ContentID("leaked"))

	// The swap survived and still commits.
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("new")}))
	require.NoError(t, stream.Close(ctx))

	stats, err = c.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.ExistingCount)
	assert.Zero(t, stats.OrphanedCount)
}

func TestCollector_StartStop(t *testing.T) {
	store := newStore(t, "orphan")

	c, err := NewCollector(store, staticRefs{}, nil, Config{Enabled: true, Interval: 10 * time.Millisecond})
	require.NoError(t, err)

	c.Start()
	c.Start()

	assert.Eventually(t, func() bool {
		return len(listed(t, store)) == 0
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Stop(ctx))
	require.NoError(t, c.Stop(ctx))
}

func TestCollector_StopWithoutStart(t *testing.T) {
	c, err := NewCollector(newStore(t), staticRefs{}, nil, Config{})
	require.NoError(t, err)

	c.Start()
	assert.NoError(t, c.Stop(context.Background()))
}

func TestTracker(t *testing.T) {
	tracker := NewTracker()
	tracker.Track("b")
	tracker.Track("a")
	tracker.Track("a")
	assert.Equal(t, []metadata.ContentID{"a", "b"}, tracker.Pending())

	tracker.Release("a")
	assert.Equal(t, []metadata.ContentID{"a", "b"}, tracker.Pending())
	tracker.Release("a")
	tracker.Release("b")
	tracker.Release("never")
	assert.Empty(t, tracker.Pending())

	var none *Tracker
	none.Track("a")
	none.Release("a")
	assert.Nil(t, none.Pending())
}
