package config

import (
	"net/http"

	"github.com/marmos91/fsaccess/pkg/metrics"
	"github.com/marmos91/fsaccess/pkg/store/content/s3"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Handler serves the Prometheus registry (404 when metrics are disabled)
	Handler http.Handler

	// Provider records provider operations (never nil, uses noop if disabled)
	Provider metrics.ProviderMetrics

	// S3 observes S3 content stores (nil if disabled)
	S3 s3.S3Metrics
}

// InitializeMetrics creates all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns no-op metrics implementations (zero overhead)
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		return &MetricsResult{
			Handler:  http.NotFoundHandler(),
			Provider: metrics.NewNoopProviderMetrics(),
		}
	}

	metrics.InitRegistry()

	return &MetricsResult{
		Handler:  metrics.Handler(),
		Provider: metrics.NewProviderMetrics(),
		S3:       metrics.NewS3Metrics(),
	}
}
