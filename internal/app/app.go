// Package app provides application lifecycle management for the lakehouse bootstrapper.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	"github.com/stacklok/lakehouse-bootstrap/internal/versions"
)

// BootstrapApp encapsulates all components needed to reconcile one environment
type BootstrapApp struct {
	config     *config.Config
	components *AppComponents
}

// Reconcile applies the configured environment and persists the report.
// The report is returned even when err is set, as long as the run started.
func (app *BootstrapApp) Reconcile(ctx context.Context) (*report.Report, error) {
	return app.run(ctx, report.ModeApply)
}

// Plan reports what Reconcile would do without creating anything. Plans are not persisted.
func (app *BootstrapApp) Plan(ctx context.Context) (*report.Report, error) {
	return app.run(ctx, report.ModePlan)
}

func (app *BootstrapApp) run(ctx context.Context, mode report.Mode) (*report.Report, error) {
	c := app.components

	var (
		rep *report.Report
		err error
	)
	if mode == report.ModePlan {
		rep, err = c.Reconciler.Plan(ctx, c.Environment, c.Client)
	} else {
		rep, err = c.Reconciler.Reconcile(ctx, c.Environment, c.Client)
	}

	if rep != nil {
		rep.Version = versions.GetVersionInfo().Version
	}

	if mode == report.ModeApply && c.Persistence != nil && rep != nil {
		if saveErr := c.Persistence.Save(ctx, rep); saveErr != nil {
			slog.ErrorContext(ctx, "Failed to persist report", "catalog", rep.Catalog, "error", saveErr)
			err = errors.Join(err, fmt.Errorf("failed to persist report: %w", saveErr))
		}
	}

	return rep, err
}

// Close releases the backend and flushes telemetry
func (app *BootstrapApp) Close(ctx context.Context) error {
	app.components.Backend.Cleanup()
	if app.components.Telemetry != nil {
		if err := app.components.Telemetry.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown telemetry: %w", err)
		}
	}
	return nil
}

// GetConfig returns the application configuration
func (app *BootstrapApp) GetConfig() *config.Config {
	return app.config
}

// Components returns the wired components (useful for testing)
func (app *BootstrapApp) Components() *AppComponents {
	return app.components
}
