package config

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/internal/ratelimiter"
	"github.com/marmos91/fsaccess/pkg/access"
	"github.com/marmos91/fsaccess/pkg/gc"
	"github.com/marmos91/fsaccess/pkg/registry"
	"github.com/marmos91/fsaccess/pkg/store/content/s3"
)

// InitializeRegistry creates a fully configured Registry from the provided configuration.
//
// This function orchestrates the complete initialization process:
//  1. Creates and registers all metadata stores from cfg.Metadata.Stores
//  2. Creates and registers all content stores from cfg.Content.Stores
//  3. Adds all roots from cfg.Roots with the provider tuning
//  4. Creates the orphaned content collectors, started when cfg.GC.Enabled
//
// On failure every store created so far is closed.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: Complete configuration loaded from config file
//   - m: Metrics from InitializeMetrics (nil = no-op)
//
// Returns:
//   - *registry.Registry: Fully initialized registry
//   - error: If store creation fails or a root cannot be added
//
// Example:
//
//	cfg, _ := config.Load("config.yaml")
//	reg, err := config.InitializeRegistry(ctx, cfg, config.InitializeMetrics(cfg))
//	if err != nil {
//	    log.Fatalf("Failed to initialize registry: %v", err)
//	}
//	defer reg.Close()
func InitializeRegistry(ctx context.Context, cfg *Config, m *MetricsResult) (*registry.Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is nil")
	}

	logger.Debug("Initializing registry from configuration")

	if m == nil {
		m = &MetricsResult{}
	}

	reg := registry.NewRegistry()

	if err := registerMetadataStores(ctx, reg, cfg); err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("failed to register metadata stores: %w", err)
	}
	logger.Debug("Registered %d metadata store(s)", reg.CountMetadataStores())

	if err := registerContentStores(ctx, reg, cfg, m.S3); err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("failed to register content stores: %w", err)
	}
	logger.Debug("Registered %d content store(s)", reg.CountContentStores())

	if err := addRoots(ctx, reg, cfg, m); err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("failed to add roots: %w", err)
	}
	logger.Debug("Registered %d root(s)", reg.CountRoots())

	if err := reg.StartCollectors(gc.Config{
		Enabled:   cfg.GC.Enabled,
		Interval:  cfg.GC.Interval,
		BatchSize: cfg.GC.BatchSize,
		DryRun:    cfg.GC.DryRun,
	}); err != nil {
		_ = reg.Close()
		return nil, fmt.Errorf("failed to create garbage collectors: %w", err)
	}

	return reg, nil
}

// registerMetadataStores creates and registers all configured metadata stores.
func registerMetadataStores(ctx context.Context, reg *registry.Registry, cfg *Config) error {
	for _, name := range sortedNames(cfg.Metadata.Stores) {
		storeCfg := cfg.Metadata.Stores[name]
		logger.Debug("Creating metadata store %q (type: %s)", name, storeCfg.Type)

		store, err := createMetadataStore(ctx, storeCfg)
		if err != nil {
			return fmt.Errorf("failed to create metadata store %q: %w", name, err)
		}

		if err := reg.RegisterMetadataStore(name, store); err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to register metadata store %q: %w", name, err)
		}
	}

	return nil
}

// registerContentStores creates and registers all configured content stores.
func registerContentStores(ctx context.Context, reg *registry.Registry, cfg *Config, s3Metrics s3.S3Metrics) error {
	for _, name := range sortedNames(cfg.Content.Stores) {
		storeCfg := cfg.Content.Stores[name]
		logger.Debug("Creating content store %q (type: %s)", name, storeCfg.Type)

		store, err := createContentStore(ctx, storeCfg, s3Metrics)
		if err != nil {
			return fmt.Errorf("failed to create content store %q: %w", name, err)
		}

		if err := reg.RegisterContentStore(name, store); err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to register content store %q: %w", name, err)
		}
	}

	return nil
}

// addRoots adds all configured roots. The rate limiter is shared by every
// root so the configured rate bounds the whole process.
func addRoots(ctx context.Context, reg *registry.Registry, cfg *Config, m *MetricsResult) error {
	var limiter *ratelimiter.Limiter
	if rl := cfg.Provider.RateLimit; rl.Enabled {
		limiter = ratelimiter.New(rl.RequestsPerSecond, rl.Burst)
	}

	for _, rootCfg := range cfg.Roots {
		logger.Debug("Adding root %q (metadata: %s, content: %s, read_only: %v)",
			rootCfg.Name, rootCfg.MetadataStore, rootCfg.ContentStore, rootCfg.ReadOnly)

		if err := reg.AddRoot(ctx, &registry.RootConfig{
			Name:          rootCfg.Name,
			MetadataStore: rootCfg.MetadataStore,
			ContentStore:  rootCfg.ContentStore,
			ReadOnly:      rootCfg.ReadOnly,
			Seed:          rootCfg.Seed,
			PageSize:      cfg.Provider.PageSize,
			ReadSize:      cfg.Provider.ReadSize,
			Limiter:       limiter,
			Metrics:       m.Provider,
		}); err != nil {
			return fmt.Errorf("failed to add root %q: %w", rootCfg.Name, err)
		}
	}

	return nil
}

// sortedNames returns the keys of stores in order, so stores are created
// in the same order on every start.
func sortedNames[V any](stores map[string]V) []string {
	return slices.Sorted(maps.Keys(stores))
}

// OpenRoot builds the registry described by cfg and returns the adapter for
// the first configured root. Closing the returned handle closes the
// registry and with it every store.
func OpenRoot(ctx context.Context, cfg *Config) (*access.DirectoryHandle, error) {
	reg, err := InitializeRegistry(ctx, cfg, InitializeMetrics(cfg))
	if err != nil {
		return nil, err
	}

	root, err := reg.GetRoot(cfg.Roots[0].Name)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	dir, err := root.Provider().ClosingRoot(ctx, reg.Close)
	if err != nil {
		_ = reg.Close()
		return nil, err
	}

	return access.Wrap(dir), nil
}
