package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	names := make(map[string]bool)
	for i, root := range cfg.Roots {
		if names[root.Name] {
			return fmt.Errorf("roots[%d]: duplicate root name %q", i, root.Name)
		}
		names[root.Name] = true

		if _, ok := cfg.Metadata.Stores[root.MetadataStore]; !ok {
			return fmt.Errorf("roots[%d]: metadata store %q is not configured", i, root.MetadataStore)
		}
		if _, ok := cfg.Content.Stores[root.ContentStore]; !ok {
			return fmt.Errorf("roots[%d]: content store %q is not configured", i, root.ContentStore)
		}
	}

	if cfg.Provider.RateLimit.Enabled && cfg.Provider.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("provider.rate_limit: requests_per_second must be positive when enabled")
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		// Return the first validation error with context
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
