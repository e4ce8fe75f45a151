package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklok/lakehouse-bootstrap/internal/app/backend"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/environment"
	"github.com/stacklok/lakehouse-bootstrap/internal/reconciler"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	"github.com/stacklok/lakehouse-bootstrap/internal/telemetry"
)

const tracerName = "github.com/stacklok/lakehouse-bootstrap/reconciler"

// BootstrapAppOptions is a function that configures the bootstrap app builder
type BootstrapAppOptions func(*bootstrapAppConfig) error

// bootstrapAppConfig collects the builder inputs.
// It supports dependency injection for testing while providing sensible defaults for production
type bootstrapAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	backendFactory backend.Factory
	persistence    report.Persistence
	telemetry      *telemetry.Telemetry

	reportDir     string
	skipPersisted bool
}

func baseConfig(opts ...BootstrapAppOptions) (*bootstrapAppConfig, error) {
	cfg := &bootstrapAppConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.reportDir == "" {
		cfg.reportDir = cfg.config.GetReportDirectory()
	}

	return cfg, nil
}

// NewBootstrapApp wires the backend, telemetry, reconciler and report persistence
func NewBootstrapApp(ctx context.Context, opts ...BootstrapAppOptions) (*BootstrapApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.backendFactory == nil {
		cfg.backendFactory, err = backend.NewFactory(ctx, cfg.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend: %w", err)
		}
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cfg.backendFactory.Cleanup()
		}
	}()

	client, err := cfg.backendFactory.CreateClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client: %w", err)
	}

	if cfg.telemetry == nil {
		cfg.telemetry, err = telemetry.New(ctx, cfg.config.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	rec, err := buildReconciler(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.persistence == nil && !cfg.skipPersisted {
		cfg.persistence = report.NewFilePersistence(cfg.reportDir)
		slog.DebugContext(ctx, "Reports are persisted", "directory", cfg.reportDir)
	}

	cleanupNeeded = false

	return &BootstrapApp{
		config: cfg.config,
		components: &AppComponents{
			Environment: environment.FromConfig(&cfg.config.Environment),
			Backend:     cfg.backendFactory,
			Client:      client,
			Reconciler:  rec,
			Persistence: cfg.persistence,
			Telemetry:   cfg.telemetry,
		},
	}, nil
}

func buildReconciler(cfg *bootstrapAppConfig) (*reconciler.Reconciler, error) {
	metrics, err := telemetry.NewReconcileMetrics(cfg.telemetry.MeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile metrics: %w", err)
	}

	return reconciler.New(
		reconciler.WithTracer(cfg.telemetry.Tracer(tracerName)),
		reconciler.WithMetrics(metrics),
		reconciler.WithBackendName(cfg.backendFactory.Name()),
	), nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) BootstrapAppOptions {
	return func(cfg *bootstrapAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithBackendFactory overrides the backend selected from configuration
func WithBackendFactory(f backend.Factory) BootstrapAppOptions {
	return func(cfg *bootstrapAppConfig) error {
		cfg.backendFactory = f
		return nil
	}
}

// WithReportPersistence overrides where reports are stored
func WithReportPersistence(p report.Persistence) BootstrapAppOptions {
	return func(cfg *bootstrapAppConfig) error {
		cfg.persistence = p
		return nil
	}
}

// WithReportDirectory overrides the configured report directory
func WithReportDirectory(dir string) BootstrapAppOptions {
	return func(cfg *bootstrapAppConfig) error {
		if dir == "" {
			return fmt.Errorf("report directory cannot be empty")
		}
		cfg.reportDir = dir
		return nil
	}
}

// WithoutReportPersistence disables saving reports
func WithoutReportPersistence() BootstrapAppOptions {
	return func(cfg *bootstrapAppConfig) error {
		cfg.skipPersisted = true
		return nil
	}
}

// WithTelemetry sets the telemetry providers instead of building them from configuration
func WithTelemetry(t *telemetry.Telemetry) BootstrapAppOptions {
	return func(cfg *bootstrapAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}
