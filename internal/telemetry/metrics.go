package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ReconcileMetricsMeterName is the name used for the reconcile metrics meter
	ReconcileMetricsMeterName = "github.com/stacklok/lakehouse-bootstrap/reconcile"
)

// ReconcileMetrics holds the OpenTelemetry instruments for reconciliation runs
type ReconcileMetrics struct {
	resourcesTotal metric.Int64Counter
	runDuration    metric.Float64Histogram
}

// NewReconcileMetrics creates a new ReconcileMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewReconcileMetrics(provider metric.MeterProvider) (*ReconcileMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ReconcileMetricsMeterName)

	resourcesTotal, err := meter.Int64Counter(
		"lakehouse_bootstrap_resources_total",
		metric.WithDescription("Number of reconciled resources by kind and outcome"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"lakehouse_bootstrap_reconcile_duration_seconds",
		metric.WithDescription("Duration of reconciliation runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	return &ReconcileMetrics{
		resourcesTotal: resourcesTotal,
		runDuration:    runDuration,
	}, nil
}

// RecordResource counts one reconciled resource
func (m *ReconcileMetrics) RecordResource(ctx context.Context, catalog, kind, outcome string) {
	if m == nil || m.resourcesTotal == nil {
		return
	}

	m.resourcesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("catalog", catalog),
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// RecordRunDuration records the duration of a reconciliation run
func (m *ReconcileMetrics) RecordRunDuration(ctx context.Context, catalog string, duration time.Duration, success bool) {
	if m == nil || m.runDuration == nil {
		return
	}

	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("catalog", catalog),
		attribute.Bool("success", success),
	))
}
