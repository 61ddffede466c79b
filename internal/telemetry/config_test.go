package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Getters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		config       Config
		wantName     string
		wantVersion  string
		wantEndpoint string
	}{
		{
			name:         "defaults",
			config:       Config{},
			wantName:     DefaultServiceName,
			wantVersion:  "unknown",
			wantEndpoint: DefaultEndpoint,
		},
		{
			name: "explicit values",
			config: Config{
				ServiceName:    "translations-sync-staging",
				ServiceVersion: "1.2.3",
				Endpoint:       "otel-collector:4318",
			},
			wantName:     "translations-sync-staging",
			wantVersion:  "1.2.3",
			wantEndpoint: "otel-collector:4318",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantName, tt.config.GetServiceName())
			assert.Equal(t, tt.wantVersion, tt.config.GetServiceVersion())
			assert.Equal(t, tt.wantEndpoint, tt.config.GetEndpoint())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "nil config", config: nil},
		{name: "disabled config ignores invalid sampling", config: &Config{Tracing: &TracingConfig{Enabled: true, Sampling: 2}}},
		{name: "enabled without sections", config: &Config{Enabled: true}},
		{name: "valid sampling", config: &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 0.5}}},
		{name: "disabled tracing ignores sampling", config: &Config{Enabled: true, Tracing: &TracingConfig{Sampling: -1}}},
		{
			name:    "sampling above one",
			config:  &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: 1.5}},
			wantErr: "tracing: sampling must be between 0.0 and 1.0",
		},
		{
			name:    "negative sampling",
			config:  &Config{Enabled: true, Tracing: &TracingConfig{Enabled: true, Sampling: -0.1}},
			wantErr: "sampling must be between 0.0 and 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestTracingConfig_GetSampling(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultSampling, (&TracingConfig{}).GetSampling())
	assert.Equal(t, 1.0, (&TracingConfig{Sampling: 1.0}).GetSampling())
	assert.Equal(t, 0.25, (&TracingConfig{Sampling: 0.25}).GetSampling())
}
