// Package metrics provides Prometheus metrics collection for fsaccess providers
// and content stores.
//
// All metrics are optional - if the registry is not initialized, constructors
// return no-op implementations so callers never branch on configuration.
//
// Usage:
//
//	metrics.InitRegistry()
//	providerMetrics := metrics.NewProviderMetrics()
//	s3Metrics := metrics.NewS3Metrics()
//
//	http.Handle("/metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// registry is the global Prometheus registry for all fsaccess metrics.
	// Written once by InitRegistry.
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry.
//
// It's safe to call multiple times - subsequent calls are ignored. If never
// called, GetRegistry returns nil and every constructor in this package
// returns a no-op implementation.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global Prometheus registry, or nil when metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// Handler returns an http.Handler exposing the global registry in the
// Prometheus text format. When metrics are disabled it serves 404.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
