package config

import (
	"strings"
	"time"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// DefaultStoreName names the stores created when none are configured.
const DefaultStoreName = "default"

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by store implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetadataDefaults(&cfg.Metadata)
	applyContentDefaults(&cfg.Content)
	applyRootDefaults(cfg)
	applyProviderDefaults(&cfg.Provider)
	applyGCDefaults(&cfg.GC)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyMetadataDefaults adds an in-memory store when none is configured.
func applyMetadataDefaults(cfg *MetadataConfig) {
	if len(cfg.Stores) == 0 {
		cfg.Stores = map[string]MetadataStoreConfig{
			DefaultStoreName: {Type: "memory"},
		}
	}

	for name, store := range cfg.Stores {
		if store.Type == "" {
			store.Type = "memory"
		}
		if store.Memory == nil {
			store.Memory = make(map[string]any)
		}
		if store.Badger == nil {
			store.Badger = make(map[string]any)
		}
		cfg.Stores[name] = store
	}
}

// applyContentDefaults adds an in-memory store when none is configured.
func applyContentDefaults(cfg *ContentConfig) {
	if len(cfg.Stores) == 0 {
		cfg.Stores = map[string]ContentStoreConfig{
			DefaultStoreName: {Type: "memory"},
		}
	}

	for name, store := range cfg.Stores {
		if store.Type == "" {
			store.Type = "memory"
		}
		if store.Memory == nil {
			store.Memory = make(map[string]any)
		}
		if store.Filesystem == nil {
			store.Filesystem = make(map[string]any)
		}
		if store.S3 == nil {
			store.S3 = make(map[string]any)
		}
		cfg.Stores[name] = store
	}
}

// applyRootDefaults adds a root when none is configured and points roots
// without explicit stores at the only configured store of each kind.
func applyRootDefaults(cfg *Config) {
	if len(cfg.Roots) == 0 {
		cfg.Roots = []RootConfig{{Name: "/"}}
	}

	for i := range cfg.Roots {
		root := &cfg.Roots[i]

		if root.MetadataStore == "" {
			root.MetadataStore = soleStore(cfg.Metadata.Stores)
		}
		if root.ContentStore == "" {
			root.ContentStore = soleStore(cfg.Content.Stores)
		}
	}
}

// soleStore returns the name of the only store in stores, or "" when there
// are several.
func soleStore[V any](stores map[string]V) string {
	if len(stores) != 1 {
		return ""
	}
	for name := range stores {
		return name
	}
	return ""
}

// applyProviderDefaults sets provider tuning defaults.
func applyProviderDefaults(cfg *ProviderConfig) {
	if cfg.PageSize == 0 {
		cfg.PageSize = metadata.DefaultPageSize
	}
	if cfg.ReadSize == 0 {
		cfg.ReadSize = provider.DefaultReadSize
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerSecond == 0 {
			cfg.RateLimit.RequestsPerSecond = 1000
		}
		if cfg.RateLimit.Burst == 0 {
			cfg.RateLimit.Burst = 100
		}
	}
}

// applyGCDefaults sets collector defaults. Collection stays disabled unless
// requested.
func applyGCDefaults(cfg *GCConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1000
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
