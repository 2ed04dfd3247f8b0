package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// configHeader opens every generated configuration file.
const configHeader = `# fsaccess Configuration File
#
# Environment variables override these values, e.g.
#   FSACCESS_LOGGING_LEVEL=DEBUG
#   FSACCESS_PROVIDER_READ_SIZE=131072
#   FSACCESS_GC_ENABLED=true
#
# Store types:
#   metadata: memory, badger (badger.db_path)
#   content:  memory, filesystem (filesystem.path), s3 (s3.region, s3.bucket)
#
# Roots reference stores by name. Several roots may share one store.
`

// InitConfig writes the default configuration to the default location.
//
// Parameters:
//   - force: Overwrite an existing file
//
// Returns:
//   - string: Path of the written file
//   - error: If the file exists and force is false, or writing fails
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes the default configuration to path, creating parent
// directories as needed.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use force to overwrite)", path)
		}
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// generateYAMLWithComments renders cfg as YAML preceded by configHeader.
func generateYAMLWithComments(cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	var b strings.Builder
	b.WriteString(configHeader)
	b.WriteString("\n")
	b.Write(data)
	return b.String(), nil
}

// Schema returns the JSON schema of the configuration file. Property names
// follow the YAML keys.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "fsaccess Configuration"
	schema.Description = "Configuration schema for fsaccess roots and stores"
	schema.Version = "1.0.0"
	return schema
}
