package config

import (
	"context"
	"fmt"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/store/content"
	contentfs "github.com/marmos91/fsaccess/pkg/store/content/fs"
	contentmemory "github.com/marmos91/fsaccess/pkg/store/content/memory"
	"github.com/marmos91/fsaccess/pkg/store/content/s3"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/marmos91/fsaccess/pkg/store/metadata/badger"
	metadatamemory "github.com/marmos91/fsaccess/pkg/store/metadata/memory"
	"github.com/mitchellh/mapstructure"
)

// s3YAMLConfig represents S3 configuration loaded from YAML files.
type s3YAMLConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region" validate:"required"`
	Bucket          string `mapstructure:"bucket" validate:"required"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
	MaxRetries      int    `mapstructure:"max_retries" validate:"gte=0"`
}

// decodeOptions decodes a type-specific option map into out and validates
// the result against its struct tags.
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return err
	}
	if err := validate.Struct(out); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// createMetadataStore creates a single metadata store instance.
func createMetadataStore(ctx context.Context, cfg MetadataStoreConfig) (metadata.MetadataStore, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryMetadataStore(ctx, cfg)
	case "badger":
		return createBadgerMetadataStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q", cfg.Type)
	}
}

// createMemoryMetadataStore creates an in-memory metadata store.
func createMemoryMetadataStore(ctx context.Context, cfg MetadataStoreConfig) (metadata.MetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var memoryCfg metadatamemory.MemoryMetadataStoreConfig
	if err := decodeOptions(cfg.Memory, &memoryCfg); err != nil {
		return nil, fmt.Errorf("invalid memory config: %w", err)
	}

	return metadatamemory.NewMemoryMetadataStore(memoryCfg), nil
}

// createBadgerMetadataStore creates a BadgerDB metadata store.
func createBadgerMetadataStore(ctx context.Context, cfg MetadataStoreConfig) (metadata.MetadataStore, error) {
	var badgerCfg badger.BadgerMetadataStoreConfig
	if err := decodeOptions(cfg.Badger, &badgerCfg); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	store, err := badger.NewBadgerMetadataStore(ctx, badgerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return store, nil
}

// createContentStore creates a single content store instance. s3Metrics is
// handed to S3 stores (nil = no-op).
func createContentStore(ctx context.Context, cfg ContentStoreConfig, s3Metrics s3.S3Metrics) (content.ContentStore, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemContentStore(ctx, cfg)
	case "memory":
		return createMemoryContentStore(ctx, cfg)
	case "s3":
		return createS3ContentStore(ctx, cfg, s3Metrics)
	default:
		return nil, fmt.Errorf("unknown content store type: %q", cfg.Type)
	}
}

// createFilesystemContentStore creates a filesystem-backed content store.
func createFilesystemContentStore(ctx context.Context, cfg ContentStoreConfig) (content.ContentStore, error) {
	var fsCfg contentfs.FSContentStoreConfig
	if err := decodeOptions(cfg.Filesystem, &fsCfg); err != nil {
		return nil, fmt.Errorf("invalid filesystem config: %w", err)
	}

	store, err := contentfs.NewFSContentStore(ctx, fsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filesystem store: %w", err)
	}

	return store, nil
}

// createMemoryContentStore creates an in-memory content store.
func createMemoryContentStore(ctx context.Context, cfg ContentStoreConfig) (content.ContentStore, error) {
	var memCfg contentmemory.MemoryContentStoreConfig
	if err := decodeOptions(cfg.Memory, &memCfg); err != nil {
		return nil, fmt.Errorf("invalid memory config: %w", err)
	}

	store, err := contentmemory.NewMemoryContentStore(ctx, memCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory content store: %w", err)
	}

	return store, nil
}

// createS3ContentStore creates an S3-backed content store.
func createS3ContentStore(ctx context.Context, cfg ContentStoreConfig, s3Metrics s3.S3Metrics) (content.ContentStore, error) {
	var yamlCfg s3YAMLConfig
	if err := decodeOptions(cfg.S3, &yamlCfg); err != nil {
		return nil, fmt.Errorf("invalid S3 config: %w", err)
	}

	client, err := s3.NewS3ClientFromConfig(ctx, s3.ClientConfig{
		Endpoint:        yamlCfg.Endpoint,
		Region:          yamlCfg.Region,
		AccessKeyID:     yamlCfg.AccessKeyID,
		SecretAccessKey: yamlCfg.SecretAccessKey,
		ForcePathStyle:  yamlCfg.ForcePathStyle,
		MaxRetries:      yamlCfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	store, err := s3.NewS3ContentStore(ctx, s3.S3ContentStoreConfig{
		Client:    client,
		Bucket:    yamlCfg.Bucket,
		KeyPrefix: yamlCfg.KeyPrefix,
		Metrics:   s3Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 store: %w", err)
	}

	logger.Info("S3 content store initialized: bucket=%s, region=%s, prefix=%s",
		yamlCfg.Bucket, yamlCfg.Region, yamlCfg.KeyPrefix)

	return store, nil
}
