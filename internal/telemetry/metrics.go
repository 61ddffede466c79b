package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/stacklok/translations-sync/sync"
)

// Sync metric names
const (
	MetricSyncDuration = "translations_sync_duration_seconds"
	MetricSyncChanges  = "translations_sync_changes_total"
	MetricKeys         = "translations_keys"
)

// SyncMetrics holds the OpenTelemetry instruments for sync cycle metrics
type SyncMetrics struct {
	syncDuration metric.Float64Histogram
	syncChanges  metric.Int64Counter
	keysTotal    metric.Int64Gauge
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		MetricSyncDuration,
		metric.WithDescription("Duration of sync cycles in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	syncChanges, err := meter.Int64Counter(
		MetricSyncChanges,
		metric.WithDescription("Number of sync cycles that rewrote the translations snapshot"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	keysTotal, err := meter.Int64Gauge(
		MetricKeys,
		metric.WithDescription("Number of translation values in the stored snapshot"),
		metric.WithUnit("{key}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration: syncDuration,
		syncChanges:  syncChanges,
		keysTotal:    keysTotal,
	}, nil
}

// RecordSyncDuration records the duration of a sync cycle
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, source string, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("source", source),
		attribute.Bool("success", success),
	}
	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordChange counts a cycle that rewrote the snapshot
func (m *SyncMetrics) RecordChange(ctx context.Context, source, reason string) {
	if m == nil || m.syncChanges == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("source", source),
		attribute.String("reason", reason),
	}
	m.syncChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordKeysTotal records the number of translation values last synced
func (m *SyncMetrics) RecordKeysTotal(ctx context.Context, source string, count int64) {
	if m == nil || m.keysTotal == nil {
		return
	}
	m.keysTotal.Record(ctx, count, metric.WithAttributes(attribute.String("source", source)))
}
