package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/lakehouse-bootstrap/internal/versions"
)

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())
	assert.Equal(t, versions.GetVersionInfo().Version, cfg.ServiceVersion())

	cfg = &Config{ServiceName: "svc", Endpoint: "https://collector.example.com"}
	assert.Equal(t, "svc", cfg.GetServiceName())
	assert.Equal(t, "https://collector.example.com", cfg.GetEndpoint())
}

func TestConfig_Signals(t *testing.T) {
	t.Parallel()

	off := false
	on := true

	tests := []struct {
		name        string
		config      Config
		wantTraces  bool
		wantMetrics bool
	}{
		{name: "disabled", config: Config{Traces: &on, Metrics: &on}},
		{name: "enabled defaults to both", config: Config{Enabled: true}, wantTraces: true, wantMetrics: true},
		{name: "traces only", config: Config{Enabled: true, Metrics: &off}, wantTraces: true},
		{name: "metrics only", config: Config{Enabled: true, Traces: &off}, wantMetrics: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantTraces, tt.config.TracesEnabled())
			assert.Equal(t, tt.wantMetrics, tt.config.MetricsEnabled())
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
		{name: "disabled ignores endpoint", config: &Config{Endpoint: "collector:4318"}},
		{name: "default endpoint", config: &Config{Enabled: true}},
		{name: "tls endpoint", config: &Config{Enabled: true, Endpoint: "https://collector.example.com:4318"}},
		{
			name:    "endpoint without scheme",
			config:  &Config{Enabled: true, Endpoint: "collector:4318"},
			wantErr: "http or https URL",
		},
		{
			name:    "grpc scheme",
			config:  &Config{Enabled: true, Endpoint: "grpc://collector:4317"},
			wantErr: "http or https URL",
		},
		{
			name:    "no host",
			config:  &Config{Enabled: true, Endpoint: "http:///v1"},
			wantErr: "has no host",
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
