package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoad_DefaultConfig(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: "debug"

metadata:
  stores:
    fast:
      type: memory

content:
  stores:
    fast:
      type: memory
      memory:
        max_size: 1048576

roots:
  - name: "/data"
    seed: sample
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}

	if len(cfg.Roots) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(cfg.Roots))
	}
	root := cfg.Roots[0]
	if root.Name != "/data" || root.Seed != "sample" {
		t.Errorf("Unexpected root %+v", root)
	}
	if root.MetadataStore != "fast" || root.ContentStore != "fast" {
		t.Errorf("Expected root to use the only stores, got %q/%q", root.MetadataStore, root.ContentStore)
	}

	if got := cfg.Content.Stores["fast"].Memory["max_size"]; got != 1048576 {
		t.Errorf("Expected memory max_size 1048576, got %v", got)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// A path inside a temp dir keeps the user's own config out of the test
	nonExistentPath := filepath.Join(t.TempDir(), "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if len(cfg.Roots) != 1 || cfg.Roots[0].Name != "/" {
		t.Errorf("Expected the default '/' root, got %+v", cfg.Roots)
	}
	if cfg.Metadata.Stores[DefaultStoreName].Type != "memory" {
		t.Errorf("Expected default memory metadata store, got %+v", cfg.Metadata.Stores)
	}
	if cfg.Content.Stores[DefaultStoreName].Type != "memory" {
		t.Errorf("Expected default memory content store, got %+v", cfg.Content.Stores)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	configPath := writeConfig(t, `
roots:
  - name: "data"
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected validation error for a root name without leading slash")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FSACCESS_LOGGING_LEVEL", "WARN")
	t.Setenv("FSACCESS_PROVIDER_READ_SIZE", "131072")
	t.Setenv("FSACCESS_METRICS_ENABLED", "true")

	configPath := writeConfig(t, `
logging:
  level: INFO
provider:
  read_size: 65536
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected env level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Provider.ReadSize != 131072 {
		t.Errorf("Expected env read size 131072, got %d", cfg.Provider.ReadSize)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics enabled from environment")
	}
}

func TestLoad_GCSection(t *testing.T) {
	configPath := writeConfig(t, `
gc:
  enabled: true
  interval: 90m
  dry_run: true
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.GC.Enabled || !cfg.GC.DryRun {
		t.Errorf("Expected GC enabled in dry run, got %+v", cfg.GC)
	}
	if cfg.GC.Interval != 90*time.Minute {
		t.Errorf("Expected interval 90m, got %v", cfg.GC.Interval)
	}
	if cfg.GC.BatchSize != 1000 {
		t.Errorf("Expected default batch size 1000, got %d", cfg.GC.BatchSize)
	}
}

func TestGetConfigDir_XDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if got, want := GetConfigDir(), filepath.Join(xdg, "fsaccess"); got != want {
		t.Errorf("Expected config dir %q, got %q", want, got)
	}
	if got, want := GetDefaultConfigPath(), filepath.Join(xdg, "fsaccess", "config.yaml"); got != want {
		t.Errorf("Expected config path %q, got %q", want, got)
	}
	if ConfigExists() {
		t.Error("Expected no config in an empty XDG dir")
	}
}
