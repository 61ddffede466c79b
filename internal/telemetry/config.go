// Package telemetry provides OpenTelemetry instrumentation for the translations sync service.
// Metrics are always exposed in the Prometheus format; OTLP export of traces
// and metrics is opt-in.
package telemetry

import (
	"errors"
	"fmt"
)

const (
	// DefaultServiceName is the default service name for telemetry
	DefaultServiceName = "translations-sync"

	// DefaultEndpoint is the default OTLP endpoint for telemetry
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling is the default trace sampling rate (5%)
	DefaultSampling = 0.05
)

// Config represents the root telemetry configuration
type Config struct {
	// Enabled controls whether OTLP export is enabled globally
	Enabled bool

	// ServiceName is the name of the service for telemetry identification
	ServiceName string

	// ServiceVersion is the version of the service for telemetry identification
	ServiceVersion string

	// Endpoint is the OTLP collector endpoint ("host:port", HTTP)
	Endpoint string

	// Insecure allows HTTP connections instead of HTTPS
	Insecure bool

	// Tracing contains tracing-specific configuration
	Tracing *TracingConfig

	// Metrics contains metrics-specific configuration
	Metrics *MetricsConfig
}

// TracingConfig defines tracing-specific configuration
type TracingConfig struct {
	// Enabled controls whether spans are exported
	Enabled bool

	// Sampling controls the trace sampling rate (0.0 to 1.0)
	Sampling float64
}

// MetricsConfig defines metrics-specific configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are pushed to the OTLP endpoint.
	// The Prometheus endpoint is served regardless.
	Enabled bool
}

// GetServiceName returns the service name, using default if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version, using "unknown" if not specified
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the endpoint, using default if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetSampling returns the sampling ratio.
// 0 is treated as unset and yields DefaultSampling.
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0.0 {
		return DefaultSampling
	}
	return c.Sampling
}

// Validate validates the telemetry configuration
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if c.Tracing != nil {
		if err := c.Tracing.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Validate validates the tracing configuration
func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Sampling < 0 || c.Sampling > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", c.Sampling)
	}
	return nil
}
