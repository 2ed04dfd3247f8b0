package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProviderMetrics provides observability for handle provider operations.
//
// The backend provider records every raw-level operation (lookup, create,
// remove, resolve, enumerate, read, write, seek, truncate, close, abort)
// through this interface. If no implementation is supplied a no-op is used.
type ProviderMetrics interface {
	// RecordOperation records a completed provider operation.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "lookup", "read", "close")
	//   - duration: Time taken by the operation
	//   - errorCode: Empty on success, otherwise the provider error code name
	RecordOperation(operation string, duration time.Duration, errorCode string)

	// RecordBytesTransferred records bytes read from or written to content.
	//
	// Parameters:
	//   - direction: "read" or "write"
	//   - bytes: Number of bytes transferred
	RecordBytesTransferred(direction string, bytes uint64)

	// StreamOpened increments the open writable stream gauge.
	StreamOpened()

	// StreamFinished decrements the open writable stream gauge and counts
	// the outcome ("commit" or "abort").
	StreamFinished(outcome string)
}

// providerMetrics is the Prometheus implementation of ProviderMetrics.
type providerMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
	openStreams       prometheus.Gauge
	streamsFinished   *prometheus.CounterVec
}

var (
	globalProvider     ProviderMetrics
	globalProviderOnce sync.Once
)

// NewProviderMetrics returns the ProviderMetrics registered on the global
// registry, or a no-op implementation if metrics are not enabled. Every call
// returns the same collectors.
func NewProviderMetrics() ProviderMetrics {
	if !IsEnabled() {
		return NewNoopProviderMetrics()
	}
	globalProviderOnce.Do(func() {
		globalProvider = NewProviderMetricsWith(GetRegistry())
	})
	return globalProvider
}

// NewProviderMetricsWith creates a ProviderMetrics registered on reg.
func NewProviderMetricsWith(reg prometheus.Registerer) ProviderMetrics {
	return &providerMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsaccess_provider_operations_total",
				Help: "Total number of provider operations by operation, status, and error code",
			},
			[]string{"operation", "status", "error_code"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fsaccess_provider_operation_duration_milliseconds",
				Help: "Duration of provider operations in milliseconds",
				Buckets: []float64{
					0.1,  // 100us
					1,    // 1ms
					10,   // 10ms
					100,  // 100ms
					1000, // 1s
				},
			},
			[]string{"operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsaccess_provider_bytes_transferred_total",
				Help: "Total bytes read from or written to file content",
			},
			[]string{"direction"},
		),
		openStreams: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "fsaccess_provider_open_writable_streams",
				Help: "Current number of writable file streams not yet closed or aborted",
			},
		),
		streamsFinished: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsaccess_provider_writable_streams_finished_total",
				Help: "Total number of writable file streams by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *providerMetrics) RecordOperation(operation string, duration time.Duration, errorCode string) {
	status := "success"
	if errorCode != "" {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status, errorCode).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *providerMetrics) RecordBytesTransferred(direction string, bytes uint64) {
	m.bytesTransferred.WithLabelValues(direction).Add(float64(bytes))
}

func (m *providerMetrics) StreamOpened() {
	m.openStreams.Inc()
}

func (m *providerMetrics) StreamFinished(outcome string) {
	m.openStreams.Dec()
	m.streamsFinished.WithLabelValues(outcome).Inc()
}

// noopProviderMetrics discards everything.
type noopProviderMetrics struct{}

// NewNoopProviderMetrics returns a ProviderMetrics that records nothing.
func NewNoopProviderMetrics() ProviderMetrics {
	return noopProviderMetrics{}
}

func (noopProviderMetrics) RecordOperation(string, time.Duration, string) {}
func (noopProviderMetrics) RecordBytesTransferred(string, uint64)         {}
func (noopProviderMetrics) StreamOpened()                                 {}
func (noopProviderMetrics) StreamFinished(string)                         {}
