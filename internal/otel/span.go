// Package otel provides OpenTelemetry span helpers shared by the reconciler and catalog clients.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on reconcile and catalog client spans
const (
	AttrCatalogName  = attribute.Key("catalog.name")
	AttrResourceKind = attribute.Key("resource.kind")
	AttrResourceName = attribute.Key("resource.qualified_name")
	AttrOutcome      = attribute.Key("resource.outcome")
	AttrBackend      = attribute.Key("catalog.backend")
	AttrResultCount  = attribute.Key("result.count")
	AttrRunSucceeded = attribute.Key("run.succeeded")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
// The no-op span is never the span already in ctx, so ending it cannot end a caller's span.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records an error on a span and sets the span status to error.
// It safely handles nil spans and nil errors.
// The status description stays generic so that connection strings and SQL never end up
// in span status; details are kept in the recorded error event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
