package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProviderMetricsWith(reg)

	m.RecordOperation("lookup", time.Millisecond, "")
	m.RecordOperation("lookup", time.Millisecond, "not_found")
	m.RecordBytesTransferred("read", 123)
	m.StreamOpened()
	m.StreamOpened()
	m.StreamFinished("commit")

	expected := `
# HELP fsaccess_provider_operations_total Total number of provider operations by operation, status, and error code
# TYPE fsaccess_provider_operations_total counter
fsaccess_provider_operations_total{error_code="",operation="lookup",status="success"} 1
fsaccess_provider_operations_total{error_code="not_found",operation="lookup",status="error"} 1
# HELP fsaccess_provider_bytes_transferred_total Total bytes read from or written to file content
# TYPE fsaccess_provider_bytes_transferred_total counter
fsaccess_provider_bytes_transferred_total{direction="read"} 123
# HELP fsaccess_provider_open_writable_streams Current number of writable file streams not yet closed or aborted
# TYPE fsaccess_provider_open_writable_streams gauge
fsaccess_provider_open_writable_streams 1
# HELP fsaccess_provider_writable_streams_finished_total Total number of writable file streams by outcome
# TYPE fsaccess_provider_writable_streams_finished_total counter
fsaccess_provider_writable_streams_finished_total{outcome="commit"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"fsaccess_provider_operations_total",
		"fsaccess_provider_bytes_transferred_total",
		"fsaccess_provider_open_writable_streams",
		"fsaccess_provider_writable_streams_finished_total",
	)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "fsaccess_provider_operation_duration_milliseconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestS3Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewS3MetricsWith(reg)

	m.ObserveOperation("PutObject", 10*time.Millisecond, nil)
	m.ObserveOperation("GetObject", 5*time.Millisecond, errors.New("boom"))
	m.RecordBytes("write", 42)

	count, err := testutil.GatherAndCount(reg, "fsaccess_s3_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "fsaccess_s3_bytes_transferred_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoopProviderMetrics()
	assert.NotPanics(t, func() {
		m.RecordOperation("read", time.Second, "io")
		m.RecordBytesTransferred("write", 1)
		m.StreamOpened()
		m.StreamFinished("abort")
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	require.True(t, IsEnabled())

	m := NewProviderMetrics()
	m.RecordOperation("resolve", time.Millisecond, "")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fsaccess_provider_operations_total{error_code="",operation="resolve",status="success"} 1`)
}
