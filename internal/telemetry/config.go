// Package telemetry exports the traces and metrics of a bootstrap run over OTLP/HTTP.
package telemetry

import (
	"fmt"
	"net/url"

	"github.com/stacklok/lakehouse-bootstrap/internal/versions"
)

const (
	// DefaultServiceName identifies the bootstrapper in the collector
	DefaultServiceName = "lakehouse-bootstrap"

	// DefaultEndpoint is a collector on the local host
	DefaultEndpoint = "http://localhost:4318"
)

// Config is the telemetry section of the configuration file.
// Every run is sampled; a one-shot run produces a single trace.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// Endpoint is the collector base URL. The scheme selects plain HTTP or TLS and the
	// exporters append /v1/traces and /v1/metrics.
	Endpoint string `yaml:"endpoint,omitempty"`

	ServiceName string `yaml:"service_name,omitempty"`

	// Traces and Metrics switch a signal off when set to false
	Traces  *bool `yaml:"traces,omitempty"`
	Metrics *bool `yaml:"metrics,omitempty"`
}

// GetServiceName returns the service name, using default if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// ServiceVersion is the version of the running binary
func (*Config) ServiceVersion() string {
	return versions.GetVersionInfo().Version
}

// GetEndpoint returns the endpoint, using default if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// TracesEnabled reports whether spans are exported
func (c *Config) TracesEnabled() bool {
	return c.Enabled && (c.Traces == nil || *c.Traces)
}

// MetricsEnabled reports whether the run metrics are exported
func (c *Config) MetricsEnabled() bool {
	return c.Enabled && (c.Metrics == nil || *c.Metrics)
}

// Validate checks the collector endpoint of an enabled configuration
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	u, err := url.Parse(c.GetEndpoint())
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint must be an http or https URL, got %q", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q has no host", c.Endpoint)
	}
	return nil
}
