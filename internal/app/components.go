package app

import (
	"github.com/stacklok/lakehouse-bootstrap/internal/app/backend"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/environment"
	"github.com/stacklok/lakehouse-bootstrap/internal/reconciler"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	"github.com/stacklok/lakehouse-bootstrap/internal/telemetry"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Environment is the desired state derived from configuration
	Environment *environment.Spec

	// Backend owns the catalog client and its resources
	Backend backend.Factory

	// Client is the catalog client created by Backend
	Client catalog.Client

	// Reconciler applies Environment through Client
	Reconciler *reconciler.Reconciler

	// Persistence stores the last report per catalog (optional)
	Persistence report.Persistence

	// Telemetry holds the tracer and meter providers
	Telemetry *telemetry.Telemetry
}
