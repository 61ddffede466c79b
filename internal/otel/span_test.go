package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestTracer(t *testing.T) (*tracetest.InMemoryExporter, trace.Tracer) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp.Tracer("test")
}

func TestStartSpan_NilTracer(t *testing.T) {
	t.Parallel()

	ctx, span := StartSpan(context.Background(), nil, "sync.PerformSync")

	require.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	assert.NotPanics(t, func() { span.End() })
}

func TestStartSpan_RecordsAttributes(t *testing.T) {
	t.Parallel()

	exporter, tracer := newTestTracer(t)

	_, span := StartSpan(context.Background(), tracer, "sync.PerformSync",
		trace.WithAttributes(AttrSourceType.String("sheets"), AttrKeyCount.Int(12)))
	require.True(t, span.SpanContext().IsValid())
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "sync.PerformSync", spans[0].Name)

	attrs := make(map[string]any)
	for _, attr := range spans[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, "sheets", attrs["source.type"])
	assert.Equal(t, int64(12), attrs["translations.key_count"])
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { RecordError(nil, errors.New("boom")) })

	exporter, tracer := newTestTracer(t)

	_, okSpan := tracer.Start(context.Background(), "ok")
	RecordError(okSpan, nil)
	okSpan.End()

	_, failedSpan := tracer.Start(context.Background(), "failed")
	RecordError(failedSpan, errors.New("spreadsheet unavailable"))
	failedSpan.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)

	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "operation failed", spans[1].Status.Description)
	require.NotEmpty(t, spans[1].Events)
	assert.Equal(t, "exception", spans[1].Events[0].Name)
}
