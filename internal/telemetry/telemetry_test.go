package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNew_Default(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.IsType(t, noop.TracerProvider{}, tel.TracerProvider())
	assert.IsType(t, &sdkmetric.MeterProvider{}, tel.MeterProvider())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled: true,
		Tracing: &TracingConfig{Enabled: true, Sampling: 3},
	}))
	require.Error(t, err)
	assert.Nil(t, tel)
	assert.Contains(t, err.Error(), "invalid telemetry configuration")
}

func TestNew_DisabledIgnoresSections(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled: false,
		Tracing: &TracingConfig{Enabled: true, Sampling: 1},
		Metrics: &MetricsConfig{Enabled: true},
	}))
	require.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, tel.TracerProvider())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_TracingEnabled(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background(), WithTelemetryConfig(&Config{
		Enabled:  true,
		Endpoint: "localhost:4318",
		Insecure: true,
		Tracing:  &TracingConfig{Enabled: true, Sampling: 1},
	}))
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, tel.TracerProvider())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestTelemetry_MetricsHandler(t *testing.T) {
	t.Parallel()

	tel, err := New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	metrics, err := NewSyncMetrics(tel.MeterProvider())
	require.NoError(t, err)
	metrics.RecordKeysTotal(context.Background(), "sheets", 7)

	server := httptest.NewServer(tel.MetricsHandler())
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "translations_keys")
	assert.Contains(t, string(body), `source="sheets"`)
	assert.Contains(t, string(body), "go_goroutines")
}
