package backend

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/marmos91/fsaccess/internal/ratelimiter"
	"github.com/marmos91/fsaccess/pkg/metrics"
	"github.com/marmos91/fsaccess/pkg/provider"
	providertesting "github.com/marmos91/fsaccess/pkg/provider/testing"
	contentfs "github.com/marmos91/fsaccess/pkg/store/content/fs"
	contentmemory "github.com/marmos91/fsaccess/pkg/store/content/memory"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/marmos91/fsaccess/pkg/store/metadata/badger"
	metadatamemory "github.com/marmos91/fsaccess/pkg/store/metadata/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryProvider(t *testing.T, cfg Config) *Provider {
	t.Helper()

	store, err := contentmemory.NewMemoryContentStore(context.Background(), contentmemory.MemoryContentStoreConfig{})
	require.NoError(t, err)
	meta := metadatamemory.NewMemoryMetadataStore(metadatamemory.MemoryMetadataStoreConfig{})

	cfg.OwnsStores = true
	p, err := New(context.Background(), meta, store, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func rootOfProvider(t *testing.T, p *Provider) provider.DirectoryHandle {
	t.Helper()

	root, err := p.Root(context.Background())
	require.NoError(t, err)
	return root
}

func sampleRoot(t *testing.T) provider.DirectoryHandle {
	t.Helper()

	p := newMemoryProvider(t, Config{})
	require.NoError(t, SeedSample(context.Background(), p))
	return rootOfProvider(t, p)
}

func TestMemoryProvider(t *testing.T) {
	suite := &providertesting.ProviderTestSuite{
		NewRoot: func(t *testing.T) provider.DirectoryHandle {
			// A small page size exercises lazy paging.
			return rootOfProvider(t, newMemoryProvider(t, Config{PageSize: 7}))
		},
	}
	suite.Run(t)
}

func TestBadgerBillyProvider(t *testing.T) {
	suite := &providertesting.ProviderTestSuite{
		NewRoot: func(t *testing.T) provider.DirectoryHandle {
			meta, err := badger.NewBadgerMetadataStore(context.Background(), badger.BadgerMetadataStoreConfig{InMemory: true})
			require.NoError(t, err)
			store := contentfs.NewFSContentStoreWithFilesystem(memfs.New(), 0)

			p, err := New(context.Background(), meta, store, Config{ShareName: "/export", OwnsStores: true})
			require.NoError(t, err)
			t.Cleanup(func() { _ = p.Close() })
			return rootOfProvider(t, p)
		},
	}
	suite.Run(t)
}

func TestSampleTree(t *testing.T) {
	root := sampleRoot(t)
	ctx := context.Background()

	it, err := root.Entries(ctx)
	require.NoError(t, err)
	defer it.Close()

	got := map[string]provider.Kind{}
	for {
		entry, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got[entry.Name] = entry.Handle.Kind()
	}

	assert.Equal(t, map[string]provider.Kind{
		"first":  provider.KindDirectory,
		"quatre": provider.KindDirectory,
		"3":      provider.KindFile,
		"annar":  provider.KindFile,
	}, got)
	assert.Equal(t, "", root.Name())
}

func TestSampleIsIdempotent(t *testing.T) {
	p := newMemoryProvider(t, Config{})
	require.NoError(t, SeedSample(context.Background(), p))
	require.NoError(t, SeedSample(context.Background(), p))

	stats, err := p.content.GetStorageStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.ContentCount)
}

func TestFileSnapshot(t *testing.T) {
	root := sampleRoot(t)
	ctx := context.Background()

	fh, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{})
	require.NoError(t, err)

	file, err := fh.GetFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "annar", file.Name())
	assert.Equal(t, "text/plain", file.Type())
	assert.Equal(t, int64(123), file.Size())
	assert.Equal(t, int64(1658159058), file.LastModified().Unix())
	assert.Equal(t, provider.DefaultReadSize, file.PreferredReadSize())

	data, err := file.ReadRange(ctx, 0, 200)
	require.NoError(t, err)
	assert.Equal(t, SampleText, string(data))

	data, err = file.ReadRange(ctx, 120, 10)
	require.NoError(t, err)
	assert.Equal(t, "nt.", string(data))

	data, err = file.ReadRange(ctx, 500, 10)
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = file.ReadRange(ctx, -1, 10)
	assert.True(t, provider.HasCode(err, provider.ErrInvalidArgument))
}

func TestSnapshotAfterCommit(t *testing.T) {
	root := sampleRoot(t)
	ctx := context.Background()

	fh, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{})
	require.NoError(t, err)
	old, err := fh.GetFile(ctx)
	require.NoError(t, err)

	stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("new")}))
	require.NoError(t, stream.Close(ctx))

	_, err = old.ReadRange(ctx, 0, 10)
	assert.True(t, provider.HasCode(err, provider.ErrInvalidState), "got %v", err)
}

func TestDetectType(t *testing.T) {
	root := rootOfProvider(t, newMemoryProvider(t, Config{}))
	ctx := context.Background()

	write := func(name string, data []byte) provider.File {
		fh, err := root.GetFileHandle(ctx, name, provider.GetFileOptions{Create: true})
		require.NoError(t, err)
		stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{})
		require.NoError(t, err)
		require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: data}))
		require.NoError(t, stream.Close(ctx))
		file, err := fh.GetFile(ctx)
		require.NoError(t, err)
		return file
	}

	assert.Equal(t, "text/html", write("index.html", []byte("plain")).Type())
	assert.Equal(t, "image/png", write("noext", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")).Type())
	assert.Equal(t, "", write("empty", []byte{}).Type())
}

func TestPermissions(t *testing.T) {
	root := sampleRoot(t)
	ctx := context.Background()

	annar, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{})
	require.NoError(t, err)
	three, err := root.GetFileHandle(ctx, "3", provider.GetFileOptions{})
	require.NoError(t, err)

	read := provider.PermissionDescriptor{Mode: provider.PermissionRead}
	readwrite := provider.PermissionDescriptor{Mode: provider.PermissionReadWrite}

	tests := []struct {
		name    string
		handle  provider.Handle
		desc    provider.PermissionDescriptor
		query   provider.PermissionState
		request provider.PermissionState
	}{
		{"RootRead", root, read, provider.PermissionGranted, provider.PermissionGranted},
		{"RootReadWrite", root, readwrite, provider.PermissionGranted, provider.PermissionGranted},
		{"FileReadWrite", annar, readwrite, provider.PermissionGranted, provider.PermissionGranted},
		{"ReadOnlyFileRead", three, read, provider.PermissionGranted, provider.PermissionGranted},
		{"ReadOnlyFileReadWrite", three, readwrite, provider.PermissionDenied, provider.PermissionPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := tt.handle.QueryPermission(ctx, tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.query, state)

			state, err = tt.handle.RequestPermission(ctx, tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.request, state)
		})
	}

	_, err = annar.QueryPermission(ctx, provider.PermissionDescriptor{Mode: "execute"})
	assert.True(t, provider.HasCode(err, provider.ErrInvalidArgument))

	_, err = three.CreateWritable(ctx, provider.CreateWritableOptions{})
	assert.True(t, provider.HasCode(err, provider.ErrPermissionDenied))
}

func TestReadOnlyProvider(t *testing.T) {
	p := newMemoryProvider(t, Config{ReadOnly: true})
	require.NoError(t, SeedSample(context.Background(), p))
	root := rootOfProvider(t, p)
	ctx := context.Background()

	_, err := root.GetFileHandle(ctx, "new", provider.GetFileOptions{Create: true})
	assert.True(t, provider.HasCode(err, provider.ErrPermissionDenied))

	err = root.RemoveEntry(ctx, "annar", provider.RemoveOptions{})
	assert.True(t, provider.HasCode(err, provider.ErrPermissionDenied))

	annar, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{Create: true})
	require.NoError(t, err)
	_, err = annar.CreateWritable(ctx, provider.CreateWritableOptions{})
	assert.True(t, provider.HasCode(err, provider.ErrPermissionDenied))

	state, err := annar.RequestPermission(ctx, provider.PermissionDescriptor{Mode: provider.PermissionReadWrite})
	require.NoError(t, err)
	assert.Equal(t, provider.PermissionDenied, state)
}

func TestResolveForeignRef(t *testing.T) {
	root := sampleRoot(t)
	ctx := context.Background()

	path, err := root.Resolve(ctx, plainRef{provider.KindFile, "points"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quatre", "points"}, path)

	path, err = root.Resolve(ctx, plainRef{provider.KindDirectory, "first"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, path)

	path, err = root.Resolve(ctx, plainRef{provider.KindDirectory, "unknown"})
	require.NoError(t, err)
	assert.Nil(t, path)

	// Kind must match too.
	path, err = root.Resolve(ctx, plainRef{provider.KindDirectory, "annar"})
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestResolveRemovedHandle(t *testing.T) {
	root := sampleRoot(t)
	ctx := context.Background()

	fh, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{})
	require.NoError(t, err)
	require.NoError(t, root.RemoveEntry(ctx, "annar", provider.RemoveOptions{}))

	path, err := root.Resolve(ctx, fh)
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestRecursiveRemoveDeletesContent(t *testing.T) {
	p := newMemoryProvider(t, Config{})
	require.NoError(t, SeedSample(context.Background(), p))
	root := rootOfProvider(t, p)
	ctx := context.Background()

	first, err := root.GetDirectoryHandle(ctx, "first", provider.GetDirectoryOptions{})
	require.NoError(t, err)
	comment, err := first.GetFileHandle(ctx, "comment", provider.GetFileOptions{})
	require.NoError(t, err)
	stream, err := comment.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("bytes")}))
	require.NoError(t, stream.Close(ctx))

	before, err := p.content.GetStorageStats(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), before.ContentCount)

	require.NoError(t, root.RemoveEntry(ctx, "first", provider.RemoveOptions{Recursive: true}))

	after, err := p.content.GetStorageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), after.ContentCount)
}

func TestAbortDeletesSwap(t *testing.T) {
	p := newMemoryProvider(t, Config{})
	root := rootOfProvider(t, p)
	ctx := context.Background()

	fh, err := root.GetFileHandle(ctx, "a", provider.GetFileOptions{Create: true})
	require.NoError(t, err)
	stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("pending")}))

	_, err = stream.Abort(ctx, "no")
	require.NoError(t, err)

	stats, err := p.content.GetStorageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.ContentCount)
}

func TestOversizedWriteIsRejected(t *testing.T) {
	p := newMemoryProvider(t, Config{})
	root := rootOfProvider(t, p)
	ctx := context.Background()

	fh, err := root.GetFileHandle(ctx, "a", provider.GetFileOptions{Create: true})
	require.NoError(t, err)
	stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)

	huge := int64(1 << 62)
	err = stream.Write(ctx, provider.WriteParams{Data: []byte("x"), Position: &huge})
	assert.True(t, provider.HasCode(err, provider.ErrInvalidArgument), "got %v", err)

	err = stream.Truncate(ctx, huge)
	assert.True(t, provider.HasCode(err, provider.ErrInvalidArgument), "got %v", err)

	// The stream is still usable.
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("ok")}))
	require.NoError(t, stream.Close(ctx))

	file, err := fh.GetFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), file.Size())
}

func TestCommitReplacesContent(t *testing.T) {
	p := newMemoryProvider(t, Config{})
	require.NoError(t, SeedSample(context.Background(), p))
	root := rootOfProvider(t, p)
	ctx := context.Background()

	fh, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{})
	require.NoError(t, err)
	stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{KeepExistingData: true})
	require.NoError(t, err)
	require.NoError(t, stream.Close(ctx))

	stats, err := p.content.GetStorageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.ContentCount)
	assert.Equal(t, uint64(123), stats.UsedSize)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimiter.New(1, 1)
	root := rootOfProvider(t, newMemoryProvider(t, Config{Limiter: limiter}))

	// The first call takes the only token.
	_, err := root.GetFileHandle(context.Background(), "a", provider.GetFileOptions{Create: true})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = root.GetFileHandle(ctx, "a", provider.GetFileOptions{})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	root := rootOfProvider(t, newMemoryProvider(t, Config{Metrics: metrics.NewProviderMetricsWith(reg)}))
	ctx := context.Background()

	fh, err := root.GetFileHandle(ctx, "a", provider.GetFileOptions{Create: true})
	require.NoError(t, err)
	_, err = root.GetFileHandle(ctx, "missing", provider.GetFileOptions{})
	require.Error(t, err)

	stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("12345")}))
	require.NoError(t, stream.Close(ctx))

	families, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["fsaccess_provider_operations_total"])
	assert.True(t, found["fsaccess_provider_bytes_transferred_total"])

	assert.Equal(t, 1, mustCount(t, reg, "fsaccess_provider_writable_streams_finished_total"))
}

func TestNewOwningClosesStoresOnFailure(t *testing.T) {
	ctx := context.Background()

	store, err := contentmemory.NewMemoryContentStore(ctx, contentmemory.MemoryContentStoreConfig{})
	require.NoError(t, err)
	require.NoError(t, store.WriteContent(ctx, "staged", []byte("x")))

	_, err = newOwning(ctx, nil, store, Config{})
	require.Error(t, err)

	// Closing a memory store drops its content.
	exists, err := store.ContentExists(ctx, "staged")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocators(t *testing.T) {
	ctx := context.Background()

	t.Run("MemSample", func(t *testing.T) {
		root, err := provider.Open(ctx, "mem://localhost/export?seed=sample&rsize=10240")
		require.NoError(t, err)
		defer root.(io.Closer).Close()

		fh, err := root.GetFileHandle(ctx, "annar", provider.GetFileOptions{})
		require.NoError(t, err)
		file, err := fh.GetFile(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10240, file.PreferredReadSize())
	})

	t.Run("MemUnknownSeed", func(t *testing.T) {
		_, err := provider.Open(ctx, "mem:///?seed=bogus")
		assert.True(t, provider.HasCode(err, provider.ErrInvalidArgument))
	})

	t.Run("MemBadPageSize", func(t *testing.T) {
		_, err := provider.Open(ctx, "mem:///?page_size=zero")
		assert.True(t, provider.HasCode(err, provider.ErrInvalidArgument))
	})

	t.Run("MemReadOnly", func(t *testing.T) {
		root, err := provider.Open(ctx, "mem:///?read_only=true")
		require.NoError(t, err)
		defer root.(io.Closer).Close()

		_, err = root.GetDirectoryHandle(ctx, "d", provider.GetDirectoryOptions{Create: true})
		assert.True(t, provider.HasCode(err, provider.ErrPermissionDenied))
	})

	t.Run("FilePersists", func(t *testing.T) {
		dir := t.TempDir()
		locator := (&url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}).String()

		root, err := provider.Open(ctx, locator)
		require.NoError(t, err)
		fh, err := root.GetFileHandle(ctx, "kept", provider.GetFileOptions{Create: true})
		require.NoError(t, err)
		stream, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{})
		require.NoError(t, err)
		require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("durable")}))
		require.NoError(t, stream.Close(ctx))
		require.NoError(t, root.(io.Closer).Close())

		reopened, err := provider.Open(ctx, locator)
		require.NoError(t, err)
		defer reopened.(io.Closer).Close()

		fh, err = reopened.GetFileHandle(ctx, "kept", provider.GetFileOptions{})
		require.NoError(t, err)
		file, err := fh.GetFile(ctx)
		require.NoError(t, err)
		data, err := file.ReadRange(ctx, 0, file.Size())
		require.NoError(t, err)
		assert.Equal(t, "durable", string(data))
	})

	t.Run("FileNoPath", func(t *testing.T) {
		_, err := provider.Open(ctx, "file://")
		assert.True(t, provider.HasCode(err, provider.ErrInvalidArgument))
	})
}

type plainRef struct {
	kind provider.Kind
	name string
}

func (r plainRef) Kind() provider.Kind { return r.kind }
func (r plainRef) Name() string        { return r.name }

func mustCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()

	n, err := testutil.GatherAndCount(reg, name)
	require.NoError(t, err)
	return n
}

type recordingTracker struct {
	tracked  []metadata.ContentID
	released []metadata.ContentID
}

func (r *recordingTracker) Track(id metadata.ContentID)   { r.tracked = append(r.tracked, id) }
func (r *recordingTracker) Release(id metadata.ContentID) { r.released = append(r.released, id) }

func TestTrackerCoversStagedContent(t *testing.T) {
	tracker := &recordingTracker{}
	p := newMemoryProvider(t, Config{Tracker: tracker})
	ctx := context.Background()

	require.NoError(t, SeedSample(ctx, p))
	require.Len(t, tracker.tracked, 1, "only annar carries content")
	assert.Equal(t, tracker.tracked, tracker.released)

	root := rootOfProvider(t, p)
	fh, err := root.GetFileHandle(ctx, "a", provider.GetFileOptions{Create: true})
	require.NoError(t, err)

	committed, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.Len(t, tracker.tracked, 2)
	assert.Len(t, tracker.released, 1, "swap stays tracked while the stream is open")
	require.NoError(t, committed.Close(ctx))

	aborted, err := fh.CreateWritable(ctx, provider.CreateWritableOptions{KeepExistingData: true})
	require.NoError(t, err)
	_, err = aborted.Abort(ctx, "no")
	require.NoError(t, err)

	assert.Equal(t, tracker.tracked, tracker.released)
}
