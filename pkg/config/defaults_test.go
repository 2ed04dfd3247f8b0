package config

import (
	"testing"
	"time"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Stores(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	meta, ok := cfg.Metadata.Stores[DefaultStoreName]
	if !ok || meta.Type != "memory" {
		t.Fatalf("Expected default memory metadata store, got %+v", cfg.Metadata.Stores)
	}
	if meta.Memory == nil || meta.Badger == nil {
		t.Error("Expected metadata option maps to be initialized")
	}

	store, ok := cfg.Content.Stores[DefaultStoreName]
	if !ok || store.Type != "memory" {
		t.Fatalf("Expected default memory content store, got %+v", cfg.Content.Stores)
	}
	if store.Memory == nil || store.Filesystem == nil || store.S3 == nil {
		t.Error("Expected content option maps to be initialized")
	}
}

func TestApplyDefaults_Roots(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if len(cfg.Roots) != 1 {
		t.Fatalf("Expected 1 default root, got %d", len(cfg.Roots))
	}
	root := cfg.Roots[0]
	if root.Name != "/" {
		t.Errorf("Expected default root '/', got %q", root.Name)
	}
	if root.MetadataStore != DefaultStoreName || root.ContentStore != DefaultStoreName {
		t.Errorf("Expected default stores, got %q/%q", root.MetadataStore, root.ContentStore)
	}
}

func TestApplyDefaults_RootStoresAmbiguous(t *testing.T) {
	cfg := &Config{
		Metadata: MetadataConfig{Stores: map[string]MetadataStoreConfig{
			"a": {Type: "memory"},
			"b": {Type: "memory"},
		}},
		Roots: []RootConfig{{Name: "/x"}},
	}
	ApplyDefaults(cfg)

	if cfg.Roots[0].MetadataStore != "" {
		t.Errorf("Expected no metadata store picked among several, got %q", cfg.Roots[0].MetadataStore)
	}
	if cfg.Roots[0].ContentStore != DefaultStoreName {
		t.Errorf("Expected the only content store, got %q", cfg.Roots[0].ContentStore)
	}
	if err := Validate(cfg); err == nil {
		t.Error("Expected validation to reject a root without a metadata store")
	}
}

func TestApplyDefaults_Provider(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Provider.PageSize != metadata.DefaultPageSize {
		t.Errorf("Expected page size %d, got %d", metadata.DefaultPageSize, cfg.Provider.PageSize)
	}
	if cfg.Provider.ReadSize != provider.DefaultReadSize {
		t.Errorf("Expected read size %d, got %d", provider.DefaultReadSize, cfg.Provider.ReadSize)
	}
	if cfg.Provider.RateLimit.RequestsPerSecond != 0 || cfg.Provider.RateLimit.Burst != 0 {
		t.Errorf("Expected rate limit untouched while disabled, got %+v", cfg.Provider.RateLimit)
	}
}

func TestApplyDefaults_RateLimit(t *testing.T) {
	cfg := &Config{Provider: ProviderConfig{RateLimit: RateLimitConfig{Enabled: true}}}
	ApplyDefaults(cfg)

	if cfg.Provider.RateLimit.RequestsPerSecond != 1000 {
		t.Errorf("Expected 1000 rps, got %v", cfg.Provider.RateLimit.RequestsPerSecond)
	}
	if cfg.Provider.RateLimit.Burst != 100 {
		t.Errorf("Expected burst 100, got %d", cfg.Provider.RateLimit.Burst)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{Level: "warn", Format: "json", Output: "stderr"},
		Content: ContentConfig{Stores: map[string]ContentStoreConfig{
			"disk": {Type: "filesystem", Filesystem: map[string]any{"path": "/srv/content"}},
		}},
		Roots:    []RootConfig{{Name: "/data", ReadOnly: true}},
		Provider: ProviderConfig{PageSize: 16, ReadSize: 16384},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "WARN" || cfg.Logging.Format != "json" || cfg.Logging.Output != "stderr" {
		t.Errorf("Expected explicit logging preserved, got %+v", cfg.Logging)
	}
	if cfg.Content.Stores["disk"].Filesystem["path"] != "/srv/content" {
		t.Errorf("Expected explicit filesystem path preserved, got %v", cfg.Content.Stores["disk"].Filesystem)
	}
	if _, ok := cfg.Content.Stores[DefaultStoreName]; ok {
		t.Error("Expected no default content store next to a configured one")
	}
	if cfg.Roots[0].ContentStore != "disk" || !cfg.Roots[0].ReadOnly {
		t.Errorf("Unexpected root %+v", cfg.Roots[0])
	}
	if cfg.Provider.PageSize != 16 || cfg.Provider.ReadSize != 16384 {
		t.Errorf("Expected explicit provider tuning preserved, got %+v", cfg.Provider)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("Expected default config to be valid, got: %v", err)
	}
}

func TestApplyDefaults_GC(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.GC.Enabled {
		t.Error("Expected GC disabled by default")
	}
	if cfg.GC.Interval != 24*time.Hour {
		t.Errorf("Expected default interval 24h, got %v", cfg.GC.Interval)
	}
	if cfg.GC.BatchSize != 1000 {
		t.Errorf("Expected default batch size 1000, got %d", cfg.GC.BatchSize)
	}
}
