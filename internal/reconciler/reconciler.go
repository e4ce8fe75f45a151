// Package reconciler brings a catalog system into alignment with a declared lakehouse
// environment using additive, existence-checked operations only.
//
// # Ordering
//
// Resources are handled in a fixed dependency order:
//
//  1. the storage credential is resolved (fatal on failure)
//  2. the catalog is ensured (fatal on failure)
//  3. external locations, in declaration order
//  4. the schemas files, bronze, silver and gold
//  5. the landing volume
//
// Failures in steps 3 to 5 are recorded per resource and do not stop independent
// resources. A resource whose prerequisite was not confirmed is marked Failed with
// ErrDependencyUnavailable and no create call is made for it.
//
// # Statelessness
//
// A Reconciler keeps no state between calls. Every decision is derived from fresh
// Exists queries, so re-running after a partial failure is always safe.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/environment"
	"github.com/stacklok/lakehouse-bootstrap/internal/otel"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	"github.com/stacklok/lakehouse-bootstrap/internal/telemetry"
)

var (
	// ErrCatalogCreationFailed is returned when the catalog cannot be confirmed.
	// Nothing else is attempted without a catalog.
	ErrCatalogCreationFailed = errors.New("catalog creation failed")

	// ErrDependencyUnavailable marks a resource skipped because a prerequisite was not confirmed
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Reconciler applies an environment.Spec through a catalog.Client
type Reconciler struct {
	tracer  trace.Tracer
	metrics *telemetry.ReconcileMetrics
	backend string
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithTracer sets the tracer used for run and per-resource spans
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Reconciler) {
		r.tracer = tracer
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics *telemetry.ReconcileMetrics) Option {
	return func(r *Reconciler) {
		r.metrics = metrics
	}
}

// WithBackendName records the backend name in reports and spans
func WithBackendName(name string) Option {
	return func(r *Reconciler) {
		r.backend = name
	}
}

// New creates a Reconciler
func New(opts ...Option) *Reconciler {
	r := &Reconciler{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile creates every declared resource that does not exist yet.
//
// A returned error means the run stopped early: the credential could not be resolved
// (wraps catalog.ErrCredentialNotFound) or the catalog could not be confirmed (wraps
// ErrCatalogCreationFailed). In every other case the error is nil and the caller checks
// Report.Succeeded; the report always lists every resource the run reached.
func (r *Reconciler) Reconcile(ctx context.Context, env *environment.Spec, client catalog.Client) (*report.Report, error) {
	return r.execute(ctx, env, client, report.ModeApply)
}

// Plan computes the create/skip decisions of Reconcile without issuing create calls.
// Resources that would be created are reported as WouldCreate.
func (r *Reconciler) Plan(ctx context.Context, env *environment.Spec, client catalog.Client) (*report.Report, error) {
	return r.execute(ctx, env, client, report.ModePlan)
}

func (r *Reconciler) execute(
	ctx context.Context,
	env *environment.Spec,
	client catalog.Client,
	mode report.Mode,
) (rep *report.Report, err error) {
	rep = report.New(env.Catalog.Name, mode)
	rep.Backend = r.backend

	ctx, span := otel.StartSpan(ctx, r.tracer, "reconciler."+string(mode),
		trace.WithAttributes(
			otel.AttrCatalogName.String(env.Catalog.Name),
			otel.AttrBackend.String(r.backend),
		))
	start := time.Now()
	defer func() {
		rep.Finish()
		if err != nil {
			rep.Fatal = err.Error()
			otel.RecordError(span, err)
		}
		succeeded := rep.Succeeded()
		span.SetAttributes(
			otel.AttrResultCount.Int(len(rep.Entries)),
			otel.AttrRunSucceeded.Bool(succeeded),
		)
		span.End()
		if mode == report.ModeApply {
			r.metrics.RecordRunDuration(ctx, env.Catalog.Name, time.Since(start), succeeded)
		}
		slog.InfoContext(ctx, "Reconciliation finished",
			"catalog", env.Catalog.Name,
			"mode", mode,
			"run_id", rep.RunID,
			"summary", rep.Summary(),
		)
	}()

	slog.InfoContext(ctx, "Reconciliation started",
		"catalog", env.Catalog.Name,
		"mode", mode,
		"run_id", rep.RunID,
		"backend", r.backend,
	)

	s := &run{
		reconciler:  r,
		client:      client,
		mode:        mode,
		report:      rep,
		credentials: make(map[string]catalog.CredentialHandle),
		locations:   make(map[string]catalog.ExternalLocationSpec),
		schemas:     make(map[string]bool),
	}

	// Step 1: nothing downstream can proceed without the storage credential
	handle, credErr := client.GetCredential(ctx, env.Credential.Name)
	if credErr != nil {
		return rep, fmt.Errorf("failed to resolve storage credential '%s': %w", env.Credential.Name, credErr)
	}
	s.credentials[env.Credential.Name] = handle

	// Step 2: everything depends on the catalog
	entry := s.ensure(ctx, env.Catalog, nil)
	if !s.available(entry) {
		return rep, fmt.Errorf("%w: catalog '%s': %w", ErrCatalogCreationFailed, env.Catalog.Name, entry.Err)
	}

	// Step 3: locations are mutually independent
	for _, loc := range env.ExternalLocations {
		s.ensureLocation(ctx, loc)
	}

	// Step 4: schemas depend on the catalog, and gold on its location
	for _, schema := range env.Schemas {
		s.ensureSchema(ctx, schema)
	}

	// Step 5: the volume depends on its location and its schema
	s.ensureVolume(ctx, env.Volume)

	return rep, nil
}

// run holds the per-call state of one reconciliation
type run struct {
	reconciler *Reconciler
	client     catalog.Client
	mode       report.Mode
	report     *report.Report

	// credentials resolved during this run only
	credentials map[string]catalog.CredentialHandle

	// locations and schemas confirmed (or planned) during this run
	locations map[string]catalog.ExternalLocationSpec
	schemas   map[string]bool
}

// prepareFunc completes a resource right before it is created
type prepareFunc func(ctx context.Context) (catalog.Resource, error)

func (s *run) ensureLocation(ctx context.Context, loc catalog.ExternalLocationSpec) {
	entry := s.ensure(ctx, loc, func(ctx context.Context) (catalog.Resource, error) {
		handle, err := s.credential(ctx, loc.CredentialName)
		if err != nil {
			return nil, err
		}
		loc.Credential = handle
		return loc, nil
	})
	if s.available(entry) {
		s.locations[loc.Name] = loc
	}
}

func (s *run) ensureSchema(ctx context.Context, schema catalog.SchemaSpec) {
	var prepare prepareFunc
	if schema.Type == catalog.SchemaKindExternal {
		loc, ok := s.locations[schema.ExternalLocation]
		if !ok {
			s.dependencyFailed(ctx, schema, fmt.Sprintf("external location '%s'", schema.ExternalLocation))
			return
		}
		prepare = func(context.Context) (catalog.Resource, error) {
			schema.StorageRoot = loc.Path
			return schema, nil
		}
	}

	entry := s.ensure(ctx, schema, prepare)
	if s.available(entry) {
		s.schemas[schema.Name] = true
	}
}

func (s *run) ensureVolume(ctx context.Context, volume catalog.VolumeSpec) {
	loc, locOK := s.locations[volume.ExternalLocation]
	switch {
	case !locOK:
		s.dependencyFailed(ctx, volume, fmt.Sprintf("external location '%s'", volume.ExternalLocation))
		return
	case !s.schemas[volume.Schema]:
		s.dependencyFailed(ctx, volume, fmt.Sprintf("schema '%s'", catalog.QualifyName(volume.Catalog, volume.Schema)))
		return
	}

	s.ensure(ctx, volume, func(context.Context) (catalog.Resource, error) {
		volume.StorageLocation = loc.Path
		return volume, nil
	})
}

// ensure checks existence and creates the resource when it is absent. prepare, when
// set, runs only if a create (or planned create) is needed.
func (s *run) ensure(ctx context.Context, res catalog.Resource, prepare prepareFunc) report.Entry {
	ctx, span := otel.StartSpan(ctx, s.reconciler.tracer, "reconciler.ensure",
		trace.WithAttributes(
			otel.AttrResourceKind.String(string(res.Kind())),
			otel.AttrResourceName.String(res.QualifiedName()),
		))
	defer span.End()

	entry := report.Entry{Kind: res.Kind(), QualifiedName: res.QualifiedName()}

	exists, err := s.client.Exists(ctx, res.Kind(), res.QualifiedName())
	switch {
	case err != nil:
		entry = failedEntry(entry, fmt.Errorf("failed to check existence: %w", err))
	case exists:
		entry.Outcome = report.OutcomeAlreadyExists
		entry.Detail = "already exists, skipped"
	default:
		entry = s.create(ctx, entry, res, prepare)
	}

	if entry.Err != nil {
		otel.RecordError(span, entry.Err)
	}
	span.SetAttributes(otel.AttrOutcome.String(string(entry.Outcome)))

	s.record(ctx, entry)
	return entry
}

func (s *run) create(ctx context.Context, entry report.Entry, res catalog.Resource, prepare prepareFunc) report.Entry {
	if prepare != nil {
		prepared, err := prepare(ctx)
		if err != nil {
			return failedEntry(entry, err)
		}
		res = prepared
	}

	if s.mode == report.ModePlan {
		entry.Outcome = report.OutcomeWouldCreate
		entry.Detail = describe(res)
		return entry
	}

	if err := s.client.Create(ctx, res); err != nil {
		return failedEntry(entry, fmt.Errorf("failed to create: %w", err))
	}
	entry.Outcome = report.OutcomeCreated
	entry.Detail = describe(res)
	return entry
}

// dependencyFailed records a resource that was not attempted
func (s *run) dependencyFailed(ctx context.Context, res catalog.Resource, dependency string) {
	err := fmt.Errorf("%w: %s was not confirmed", ErrDependencyUnavailable, dependency)
	s.record(ctx, failedEntry(report.Entry{Kind: res.Kind(), QualifiedName: res.QualifiedName()}, err))
}

// credential resolves a storage credential once per run
func (s *run) credential(ctx context.Context, name string) (catalog.CredentialHandle, error) {
	if handle, ok := s.credentials[name]; ok {
		return handle, nil
	}
	handle, err := s.client.GetCredential(ctx, name)
	if err != nil {
		return catalog.CredentialHandle{}, fmt.Errorf("failed to resolve storage credential '%s': %w", name, err)
	}
	s.credentials[name] = handle
	return handle, nil
}

// available reports whether dependents may proceed after entry
func (s *run) available(entry report.Entry) bool {
	if entry.Confirmed() {
		return true
	}
	return s.mode == report.ModePlan && entry.Outcome == report.OutcomeWouldCreate
}

func (s *run) record(ctx context.Context, entry report.Entry) {
	s.report.Add(entry)

	if s.mode == report.ModeApply {
		s.reconciler.metrics.RecordResource(ctx, s.report.Catalog, string(entry.Kind), string(entry.Outcome))
	}

	if entry.Outcome == report.OutcomeFailed {
		slog.WarnContext(ctx, "Resource not reconciled",
			"kind", entry.Kind,
			"name", entry.QualifiedName,
			"error", entry.Err,
		)
		return
	}
	slog.InfoContext(ctx, "Resource reconciled",
		"kind", entry.Kind,
		"name", entry.QualifiedName,
		"outcome", entry.Outcome,
	)
}

func failedEntry(entry report.Entry, err error) report.Entry {
	entry.Outcome = report.OutcomeFailed
	entry.Err = err
	entry.Detail = err.Error()
	return entry
}

// describe returns the report detail for a created resource
func describe(res catalog.Resource) string {
	switch r := res.(type) {
	case catalog.CatalogSpec:
		return "catalog"
	case catalog.ExternalLocationSpec:
		return fmt.Sprintf("path %s via credential %s", r.Path, r.CredentialName)
	case catalog.SchemaSpec:
		if r.Type == catalog.SchemaKindExternal {
			return fmt.Sprintf("external schema at %s (%s)", r.StorageRoot, r.ExternalLocation)
		}
		if r.Name == environment.SchemaFiles {
			return "managed schema, namespace for the external volume"
		}
		return "managed schema"
	case catalog.VolumeSpec:
		return fmt.Sprintf("external volume at %s (%s)", r.StorageLocation, r.ExternalLocation)
	default:
		return string(res.Kind())
	}
}
