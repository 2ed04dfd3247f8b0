// Package backend implements the provider contract over a metadata store and
// a content store.
//
// Entries (names, hierarchy, modes, times) live in a metadata.MetadataStore
// under a single share. File bytes live in a content.ContentStore, referenced
// by the entry's ContentID. Writable streams stage their bytes in a separate
// "swap" content object and publish it on Close by repointing the entry.
//
// Locators:
//
//	mem://[host]/[share]?seed=sample&rsize=65536&page_size=256&read_only=true
//	file:///var/lib/fsaccess?rsize=65536
//
// mem:// builds a fresh in-memory tree on every Open. file:// keeps entries in
// BadgerDB under <path>/metadata and bytes under <path>/content.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/internal/ratelimiter"
	"github.com/marmos91/fsaccess/pkg/metrics"
	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// DefaultShareName is the share used when Config.ShareName is empty.
const DefaultShareName = "/"

// Config configures a Provider.
type Config struct {
	// ShareName selects the share inside the metadata store
	ShareName string

	// PageSize is the number of entries fetched per enumeration page
	// (metadata.DefaultPageSize when <= 0)
	PageSize int

	// ReadSize is the preferred chunk size of file reads
	// (provider.DefaultReadSize when <= 0, otherwise clamped)
	ReadSize int

	// ReadOnly rejects every mutation with ErrPermissionDenied
	ReadOnly bool

	// Limiter throttles every operation (nil = unlimited)
	Limiter *ratelimiter.Limiter

	// Metrics records operations (nil = no-op)
	Metrics metrics.ProviderMetrics

	// Tracker is told about content written but not yet referenced by an
	// entry, so a garbage collector sweeping the content store keeps it
	// (nil = no tracking)
	Tracker ContentTracker

	// OwnsStores makes Close also close both stores
	OwnsStores bool
}

// ContentTracker records content that is in use but not referenced by
// metadata. Every Track is followed by exactly one Release.
type ContentTracker interface {
	Track(id metadata.ContentID)
	Release(id metadata.ContentID)
}

// Provider serves provider handles backed by a metadata store and a content
// store.
//
// Thread Safety:
// A Provider and every handle it returns are safe for concurrent use. Each
// writable stream serializes its own operations.
type Provider struct {
	meta    metadata.MetadataStore
	content content.ContentStore

	share    string
	rootID   metadata.FileHandle
	pageSize int
	readSize int
	readOnly bool

	limiter *ratelimiter.Limiter
	metrics metrics.ProviderMetrics
	tracker ContentTracker
	owns    bool
}

// New creates a Provider, creating the share root if it does not exist yet.
//
// Parameters:
//   - ctx: Context for cancellation
//   - meta: Entry store
//   - store: Byte store
//   - cfg: Provider options
//
// Returns:
//   - *Provider: Ready provider
//   - error: Store errors while creating or locating the share root
func New(ctx context.Context, meta metadata.MetadataStore, store content.ContentStore, cfg Config) (*Provider, error) {
	if meta == nil || store == nil {
		return nil, fmt.Errorf("backend: metadata and content stores are required")
	}

	share := cfg.ShareName
	if share == "" {
		share = DefaultShareName
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = metadata.DefaultPageSize
	}

	readSize := provider.DefaultReadSize
	if cfg.ReadSize > 0 {
		readSize = provider.ClampReadSize(cfg.ReadSize)
	}

	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNoopProviderMetrics()
	}

	if _, err := meta.CreateRootDirectory(ctx, share, &metadata.FileAttr{
		Type: metadata.FileTypeDirectory,
		Mode: 0o775,
	}); err != nil {
		return nil, fmt.Errorf("create root of share %q: %w", share, err)
	}

	rootHandle, err := meta.GetRootHandle(ctx, share)
	if err != nil {
		return nil, fmt.Errorf("get root of share %q: %w", share, err)
	}

	logger.Debug("backend: opened share %q (page_size=%d read_size=%d read_only=%v)",
		share, pageSize, readSize, cfg.ReadOnly)

	return &Provider{
		meta:     meta,
		content:  store,
		share:    share,
		rootID:   rootHandle,
		pageSize: pageSize,
		readSize: readSize,
		readOnly: cfg.ReadOnly,
		limiter:  cfg.Limiter,
		metrics:  m,
		tracker:  cfg.Tracker,
		owns:     cfg.OwnsStores,
	}, nil
}

// Root returns the share root directory. Its name is "".
func (p *Provider) Root(ctx context.Context) (provider.DirectoryHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := p.meta.GetFile(ctx, p.rootID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p.newDirHandle(root, ""), nil
}

// ClosingRoot returns the share root with a Close method that calls closer.
// The handle keeps its entry identity, so IsSameEntry and Resolve treat it
// like any other handle of the provider.
func (p *Provider) ClosingRoot(ctx context.Context, closer func() error) (provider.DirectoryHandle, error) {
	root, err := p.Root(ctx)
	if err != nil {
		return nil, err
	}
	return closingRoot{dirHandle: root.(*dirHandle), close: closer}, nil
}

// ShareName returns the share served by the provider.
func (p *Provider) ShareName() string {
	return p.share
}

// ReadSize returns the preferred read chunk size of file snapshots.
func (p *Provider) ReadSize() int {
	return p.readSize
}

// Close releases the stores when the provider owns them.
func (p *Provider) Close() error {
	if !p.owns {
		return nil
	}

	metaErr := p.meta.Close()
	contentErr := p.content.Close()
	if metaErr != nil {
		return fmt.Errorf("close metadata store: %w", metaErr)
	}
	if contentErr != nil {
		return fmt.Errorf("close content store: %w", contentErr)
	}
	return nil
}

// begin admits an operation through the limiter and returns the function
// that records its outcome.
func (p *Provider) begin(ctx context.Context, op string) (func(error), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.limiter.Wait(ctx, op); err != nil {
		return nil, err
	}

	start := time.Now()
	return func(err error) {
		p.metrics.RecordOperation(op, time.Since(start), errorLabel(err))
	}, nil
}

func (p *Provider) track(id metadata.ContentID) {
	if p.tracker != nil {
		p.tracker.Track(id)
	}
}

func (p *Provider) release(id metadata.ContentID) {
	if p.tracker != nil {
		p.tracker.Release(id)
	}
}

// checkWritable rejects mutations on a read-only provider.
func (p *Provider) checkWritable(name string) error {
	if p.readOnly {
		return provider.Errorf(provider.ErrPermissionDenied, "Entry \"%s\" is on a read-only provider", name)
	}
	return nil
}
