package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zapcore"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{input: "debug", want: zapcore.DebugLevel},
		{input: "INFO", want: zapcore.InfoLevel},
		{input: "", want: zapcore.InfoLevel},
		{input: "warning", want: zapcore.WarnLevel},
		{input: " error ", want: zapcore.ErrorLevel},
		{input: "verbose", want: zapcore.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestNew_InfoLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("info", WithWriter(&buf))
	require.NoError(t, err)

	logger.Info("Translations were refreshed", "keys", 12)
	logger.V(1).Info("Translations are up to date")
	logger.Error(errors.New("boom"), "Sync failed", "stage", "fetch")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "Translations were refreshed", lines[0]["msg"])
	assert.Equal(t, float64(12), lines[0]["keys"])
	assert.Contains(t, lines[0], "time")

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "fetch", lines[1]["stage"])
}

func TestNew_DebugLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("debug", WithWriter(&buf))
	require.NoError(t, err)

	logger.V(1).Info("Translations are up to date")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Translations are up to date", lines[0]["msg"])
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New("loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestWithSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New("info", WithWriter(&buf))
	require.NoError(t, err)
	ctx := logr.NewContext(context.Background(), logger)

	// Without a span the context is returned unchanged
	assert.Equal(t, ctx, WithSpan(ctx))

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	spanCtx, span := tp.Tracer("test").Start(ctx, "sync.PerformSync")
	defer span.End()

	logr.FromContextOrDiscard(WithSpan(spanCtx)).Info("Fetching translations")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, span.SpanContext().TraceID().String(), lines[0]["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), lines[0]["span_id"])
}
