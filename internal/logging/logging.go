// Package logging builds the structured process logger.
//
// Logs are JSON lines written by zap and exposed to the rest of the code as a
// logr.Logger carried in the context.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures the logger
type Option func(*loggerConfig)

type loggerConfig struct {
	writer io.Writer
}

// WithWriter redirects the log output, stderr by default
func WithWriter(w io.Writer) Option {
	return func(cfg *loggerConfig) {
		cfg.writer = w
	}
}

// ParseLevel maps a LOG_LEVEL value to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
}

// New creates a JSON logger at the given level.
// logr V(1) messages are emitted at the debug level.
func New(level string, opts ...Option) (logr.Logger, error) {
	cfg := &loggerConfig{writer: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}

	zapLevel, err := ParseLevel(level)
	if err != nil {
		return logr.Discard(), err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(cfg.writer)),
		zap.NewAtomicLevelAt(zapLevel),
	)

	return zapr.NewLogger(zap.New(core)), nil
}

// WithSpan returns a context whose logger carries the trace and span IDs of
// the active span, so that log lines can be correlated with traces
func WithSpan(ctx context.Context) context.Context {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ctx
	}

	logger := logr.FromContextOrDiscard(ctx).WithValues(
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	)
	return logr.NewContext(ctx, logger)
}
