package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []TracerProviderOption
	}{
		{name: "no options"},
		{name: "tracing config nil", opts: []TracerProviderOption{WithTracingConfig(nil)}},
		{name: "tracing disabled", opts: []TracerProviderOption{WithTracingConfig(&TracingConfig{Enabled: false, Sampling: 1})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider, err := NewTracerProvider(context.Background(), tt.opts...)
			require.NoError(t, err)
			assert.IsType(t, noop.TracerProvider{}, provider)
		})
	}
}

func TestNewTracerProvider_ExportsSpans(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	provider, err := NewTracerProvider(context.Background(),
		WithTracerServiceName("translations-sync-test"),
		WithTracerServiceVersion("0.0.1"),
		WithTracingConfig(&TracingConfig{Enabled: true, Sampling: 1.0}),
		WithSpanExporter(exporter),
	)
	require.NoError(t, err)

	tp, ok := provider.(*sdktrace.TracerProvider)
	require.True(t, ok)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := provider.Tracer("test").Start(context.Background(), "sync.PerformSync")
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sync.PerformSync", spans[0].Name)

	var serviceName string
	for _, attr := range spans[0].Resource.Attributes() {
		if attr.Key == "service.name" {
			serviceName = attr.Value.AsString()
		}
	}
	assert.Equal(t, "translations-sync-test", serviceName)
}

func TestNewTracerProvider_OTLPExporter(t *testing.T) {
	t.Parallel()

	provider, err := NewTracerProvider(context.Background(),
		WithTracingConfig(&TracingConfig{Enabled: true}),
		WithTracerEndpoint("localhost:4318"),
		WithTracerInsecure(true),
	)
	require.NoError(t, err)

	tp, ok := provider.(*sdktrace.TracerProvider)
	require.True(t, ok)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
