// Package otel provides OpenTelemetry instrumentation utilities for the translations sync service.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys used across the application.
const (
	AttrSourceType  = attribute.Key("source.type")
	AttrSpreadsheet = attribute.Key("sheets.spreadsheet")
	AttrKeyCount    = attribute.Key("translations.key_count")
	AttrLocale      = attribute.Key("translations.locale")
	AttrFilterTags  = attribute.Key("translations.filter_tags")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns the
// span already in the context, which is a no-op span when tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and marks the span as failed.
// The status description stays generic; the error itself is kept as a span event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
