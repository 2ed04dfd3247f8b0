package config

import (
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidStoreTypes(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metadata.Stores[DefaultStoreName] = MetadataStoreConfig{Type: "postgres"}

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown metadata store type")
	}

	cfg = GetDefaultConfig()
	cfg.Content.Stores[DefaultStoreName] = ContentStoreConfig{Type: "gcs"}

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for unknown content store type")
	}
}

func TestValidate_Roots(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "NoRoots",
			mutate:  func(c *Config) { c.Roots = nil },
			wantErr: "Roots",
		},
		{
			name:    "NameWithoutSlash",
			mutate:  func(c *Config) { c.Roots[0].Name = "data" },
			wantErr: "startswith",
		},
		{
			name:    "UnknownSeed",
			mutate:  func(c *Config) { c.Roots[0].Seed = "demo" },
			wantErr: "oneof",
		},
		{
			name: "Duplicate",
			mutate: func(c *Config) {
				c.Roots = append(c.Roots, c.Roots[0])
			},
			wantErr: "duplicate root name",
		},
		{
			name:    "UnknownMetadataStore",
			mutate:  func(c *Config) { c.Roots[0].MetadataStore = "missing" },
			wantErr: `metadata store "missing" is not configured`,
		},
		{
			name:    "UnknownContentStore",
			mutate:  func(c *Config) { c.Roots[0].ContentStore = "missing" },
			wantErr: `content store "missing" is not configured`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ProviderBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"PageSizeZero", func(c *Config) { c.Provider.PageSize = 0 }},
		{"PageSizeTooLarge", func(c *Config) { c.Provider.PageSize = 65537 }},
		{"ReadSizeTooSmall", func(c *Config) { c.Provider.ReadSize = 4096 }},
		{"ReadSizeTooLarge", func(c *Config) { c.Provider.ReadSize = 8 << 20 }},
		{"NegativeBurst", func(c *Config) { c.Provider.RateLimit.Burst = -1 }},
		{"GCIntervalZero", func(c *Config) { c.GC.Interval = 0 }},
		{"GCBatchSizeNegative", func(c *Config) { c.GC.BatchSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			if err := Validate(cfg); err == nil {
				t.Fatal("Expected validation error")
			}
		})
	}
}

func TestValidate_RateLimitEnabledWithoutRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Provider.RateLimit = RateLimitConfig{Enabled: true}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for enabled rate limit without a rate")
	}
	if !strings.Contains(err.Error(), "requests_per_second") {
		t.Errorf("Expected requests_per_second error, got: %v", err)
	}
}
