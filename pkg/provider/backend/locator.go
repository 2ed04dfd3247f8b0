package backend

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/content"
	contentfs "github.com/marmos91/fsaccess/pkg/store/content/fs"
	contentmemory "github.com/marmos91/fsaccess/pkg/store/content/memory"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/marmos91/fsaccess/pkg/store/metadata/badger"
	metadatamemory "github.com/marmos91/fsaccess/pkg/store/metadata/memory"
)

func init() {
	provider.Register("mem", openMemory)
	provider.Register("file", openFile)
}

// closingRoot is a share root that owns resources released by Close, such
// as the stores built for a locator.
type closingRoot struct {
	*dirHandle
	close func() error
}

func (r closingRoot) Close() error {
	return r.close()
}

// openMemory serves mem:// locators from fresh in-memory stores.
//
// Query parameters: seed=sample installs the sample tree; rsize, page_size
// and read_only map to Config.
func openMemory(ctx context.Context, u *url.URL) (provider.DirectoryHandle, error) {
	cfg, err := configFromLocator(u)
	if err != nil {
		return nil, err
	}

	store, err := contentmemory.NewMemoryContentStore(ctx, contentmemory.MemoryContentStoreConfig{})
	if err != nil {
		return nil, err
	}
	meta := metadatamemory.NewMemoryMetadataStore(metadatamemory.MemoryMetadataStoreConfig{})

	p, err := newOwning(ctx, meta, store, cfg)
	if err != nil {
		return nil, err
	}

	if seed := u.Query().Get("seed"); seed != "" {
		if seed != "sample" {
			_ = p.Close()
			return nil, provider.Errorf(provider.ErrInvalidArgument, "unknown seed %q", seed)
		}
		if err := SeedSample(ctx, p); err != nil {
			_ = p.Close()
			return nil, err
		}
	}

	return rootOf(ctx, p)
}

// openFile serves file:// locators. Entries are kept in BadgerDB under
// <path>/metadata and bytes under <path>/content.
func openFile(ctx context.Context, u *url.URL) (provider.DirectoryHandle, error) {
	if u.Path == "" {
		return nil, provider.Errorf(provider.ErrInvalidArgument, "locator %q has no path", u.String())
	}

	cfg, err := configFromLocator(u)
	if err != nil {
		return nil, err
	}
	cfg.ShareName = DefaultShareName

	base := filepath.FromSlash(u.Path)

	meta, err := badger.NewBadgerMetadataStore(ctx, badger.BadgerMetadataStoreConfig{
		DBPath: filepath.Join(base, "metadata"),
	})
	if err != nil {
		return nil, provider.Wrap(provider.ErrIO, err)
	}

	store, err := contentfs.NewFSContentStore(ctx, contentfs.FSContentStoreConfig{
		Path: filepath.Join(base, "content"),
	})
	if err != nil {
		_ = meta.Close()
		return nil, provider.Wrap(provider.ErrIO, err)
	}

	p, err := newOwning(ctx, meta, store, cfg)
	if err != nil {
		return nil, err
	}

	return rootOf(ctx, p)
}

// newOwning builds a provider over stores opened for a locator. The stores
// are closed when the provider cannot be built.
func newOwning(ctx context.Context, meta metadata.MetadataStore, store content.ContentStore, cfg Config) (*Provider, error) {
	p, err := New(ctx, meta, store, cfg)
	if err != nil {
		if meta != nil {
			_ = meta.Close()
		}
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return p, nil
}

func rootOf(ctx context.Context, p *Provider) (provider.DirectoryHandle, error) {
	root, err := p.ClosingRoot(ctx, p.Close)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return root, nil
}

// configFromLocator reads the provider options carried by a locator.
func configFromLocator(u *url.URL) (Config, error) {
	q := u.Query()

	cfg := Config{
		ShareName:  shareFromPath(u.Path),
		ReadSize:   provider.ReadSize(u),
		OwnsStores: true,
	}

	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, provider.Errorf(provider.ErrInvalidArgument, "invalid page_size %q", raw)
		}
		cfg.PageSize = n
	}

	if raw := q.Get("read_only"); raw != "" {
		ro, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, provider.Errorf(provider.ErrInvalidArgument, "invalid read_only %q", raw)
		}
		cfg.ReadOnly = ro
	}

	return cfg, nil
}

func shareFromPath(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return DefaultShareName
	}
	return fmt.Sprintf("/%s", trimmed)
}
