package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete fsaccess configuration.
//
// This structure captures all configurable aspects of a deployment:
//   - Logging configuration
//   - Named metadata stores and content stores (store-specific)
//   - Roots served from those stores
//   - Provider tuning (paging, read size, rate limit)
//   - Orphaned content garbage collection
//   - Metrics
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FSACCESS_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration type. A store entry
// carries a type plus type-specific sections (e.g., content.stores.x.s3) and
// only the section matching the selected type is decoded.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metadata holds the named metadata stores
	Metadata MetadataConfig `mapstructure:"metadata" yaml:"metadata"`

	// Content holds the named content stores
	Content ContentConfig `mapstructure:"content" yaml:"content"`

	// Roots lists the directory trees to serve
	Roots []RootConfig `mapstructure:"roots" yaml:"roots" validate:"required,min=1,dive"`

	// Provider tunes every root's provider
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`

	// GC controls the orphaned content collector
	GC GCConfig `mapstructure:"gc" yaml:"gc"`

	// Metrics controls Prometheus collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// MetadataConfig holds the named metadata stores.
type MetadataConfig struct {
	Stores map[string]MetadataStoreConfig `mapstructure:"stores" yaml:"stores" validate:"required,min=1,dive"`
}

// MetadataStoreConfig configures one metadata store.
type MetadataStoreConfig struct {
	// Type specifies which metadata store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory,omitempty"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger" yaml:"badger,omitempty"`
}

// ContentConfig holds the named content stores.
type ContentConfig struct {
	Stores map[string]ContentStoreConfig `mapstructure:"stores" yaml:"stores" validate:"required,min=1,dive"`
}

// ContentStoreConfig configures one content store.
type ContentStoreConfig struct {
	// Type specifies which content store implementation to use
	// Valid values: memory, filesystem, s3
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=memory filesystem s3"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory" yaml:"memory,omitempty"`

	// Filesystem contains filesystem-specific configuration
	// Only used when Type = "filesystem"
	Filesystem map[string]any `mapstructure:"filesystem" yaml:"filesystem,omitempty"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3" yaml:"s3,omitempty"`
}

// RootConfig defines a single root.
type RootConfig struct {
	// Name is the share name of the root inside its metadata store (e.g., "/data")
	Name string `mapstructure:"name" yaml:"name" validate:"required,startswith=/"`

	// MetadataStore names an entry of metadata.stores
	MetadataStore string `mapstructure:"metadata_store" yaml:"metadata_store" validate:"required"`

	// ContentStore names an entry of content.stores
	ContentStore string `mapstructure:"content_store" yaml:"content_store" validate:"required"`

	// ReadOnly makes the root read-only if true
	ReadOnly bool `mapstructure:"read_only" yaml:"read_only"`

	// Seed installs a fixture tree on startup
	// Valid values: "" (none), sample
	Seed string `mapstructure:"seed" yaml:"seed,omitempty" validate:"omitempty,oneof=sample"`
}

// ProviderConfig tunes the backend provider of every root.
type ProviderConfig struct {
	// PageSize is the number of entries fetched per enumeration page
	PageSize int `mapstructure:"page_size" yaml:"page_size" validate:"gte=1,lte=65536"`

	// ReadSize is the chunk size used when streaming file content
	ReadSize int `mapstructure:"read_size" yaml:"read_size" validate:"gte=8192,lte=4194304"`

	// RateLimit throttles provider operations
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig configures the token bucket shared by all roots.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// RequestsPerSecond is the sustained operation rate
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`

	// Burst is the maximum number of operations admitted at once
	Burst int `mapstructure:"burst" yaml:"burst" validate:"gte=0"`
}

// GCConfig controls the orphaned content collector. Content stores that
// serve a root get one collector each.
type GCConfig struct {
	// Enabled starts the periodic collectors
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Interval between collections (default 24h)
	Interval time.Duration `mapstructure:"interval" yaml:"interval" validate:"required,gt=0"`

	// BatchSize is the number of orphans deleted per batch (default 1000)
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size" validate:"required,gt=0"`

	// DryRun logs orphans instead of deleting them
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// MarshalYAML writes Interval as a duration string ("24h0m0s") rather than
// nanoseconds, so generated files stay readable.
func (c GCConfig) MarshalYAML() (any, error) {
	return struct {
		Enabled   bool   `yaml:"enabled"`
		Interval  string `yaml:"interval"`
		BatchSize int    `yaml:"batch_size"`
		DryRun    bool   `yaml:"dry_run"`
	}{c.Enabled, c.Interval.String(), c.BatchSize, c.DryRun}, nil
}

// MetricsConfig controls Prometheus collection.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (FSACCESS_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the FSACCESS_ prefix and underscores
	// Example: FSACCESS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("FSACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper knows about; bind the scalar
	// sections so they can be set without a config file.
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"provider.page_size", "provider.read_size",
		"provider.rate_limit.enabled", "provider.rate_limit.requests_per_second", "provider.rate_limit.burst",
		"gc.enabled", "gc.interval", "gc.batch_size", "gc.dry_run",
		"metrics.enabled",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/fsaccess/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// A missing config file is acceptable - use defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "fsaccess")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "fsaccess")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
