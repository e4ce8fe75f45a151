// Package report holds the ordered outcome log produced by a reconciliation run,
// its human-readable rendering and its on-disk persistence.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
)

// Outcome is the result of reconciling one resource
type Outcome string

const (
	// OutcomeCreated means the resource was absent and has been created
	OutcomeCreated Outcome = "Created"

	// OutcomeAlreadyExists means the resource was present and creation was skipped
	OutcomeAlreadyExists Outcome = "AlreadyExists"

	// OutcomeFailed means the resource could not be confirmed; Detail holds the reason
	OutcomeFailed Outcome = "Failed"

	// OutcomeWouldCreate is only produced by plan runs
	OutcomeWouldCreate Outcome = "WouldCreate"
)

// Mode tells whether a run applied changes or only planned them
type Mode string

const (
	// ModeApply runs issue create calls
	ModeApply Mode = "apply"

	// ModePlan runs only query existence
	ModePlan Mode = "plan"
)

// Entry is the outcome for a single resource
type Entry struct {
	Kind          catalog.ResourceKind `json:"kind" yaml:"kind"`
	QualifiedName string               `json:"qualifiedName" yaml:"qualifiedName"`
	Outcome       Outcome              `json:"outcome" yaml:"outcome"`
	Detail        string               `json:"detail,omitempty" yaml:"detail,omitempty"`

	// Err is the underlying error of a Failed entry; it is not persisted
	Err error `json:"-" yaml:"-"`
}

// Confirmed reports whether the resource is known to exist after the run
func (e Entry) Confirmed() bool {
	return e.Outcome == OutcomeCreated || e.Outcome == OutcomeAlreadyExists
}

// Report is the ordered log of a reconciliation run
type Report struct {
	RunID      string    `json:"runId" yaml:"runId"`
	Catalog    string    `json:"catalog" yaml:"catalog"`
	Backend    string    `json:"backend,omitempty" yaml:"backend,omitempty"`
	Mode       Mode      `json:"mode" yaml:"mode"`
	Version    string    `json:"version,omitempty" yaml:"version,omitempty"`
	StartedAt  time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time `json:"finishedAt" yaml:"finishedAt"`

	// Fatal is set when the run stopped early on a credential or catalog failure
	Fatal string `json:"fatal,omitempty" yaml:"fatal,omitempty"`

	Entries []Entry `json:"entries" yaml:"entries"`
}

// New starts a report for a run against the named catalog
func New(catalogName string, mode Mode) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Catalog:   catalogName,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
		Entries:   []Entry{},
	}
}

// Add appends an entry, preserving order
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Finish stamps the end time of the run
func (r *Report) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Duration returns how long the run took, or zero if it has not finished
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run reached the desired state. A plan run succeeds when
// nothing failed; an apply run additionally requires every entry to be confirmed.
func (r *Report) Succeeded() bool {
	if r.Fatal != "" {
		return false
	}
	for _, e := range r.Entries {
		switch e.Outcome {
		case OutcomeCreated, OutcomeAlreadyExists:
		case OutcomeWouldCreate:
			if r.Mode != ModePlan {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Counts returns the number of entries per outcome
func (r *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, 4)
	for _, e := range r.Entries {
		counts[e.Outcome]++
	}
	return counts
}

// Failures returns the failed entries in report order
func (r *Report) Failures() []Entry {
	var failed []Entry
	for _, e := range r.Entries {
		if e.Outcome == OutcomeFailed {
			failed = append(failed, e)
		}
	}
	return failed
}

// Lookup returns the entry for a resource, if the run reached it
func (r *Report) Lookup(kind catalog.ResourceKind, qualifiedName string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Kind == kind && e.QualifiedName == qualifiedName {
			return e, true
		}
	}
	return Entry{}, false
}

// Status returns "Success" or "Failed"
func (r *Report) Status() string {
	if r.Succeeded() {
		return "Success"
	}
	return "Failed"
}

// Summary returns a one-line description of the run
func (r *Report) Summary() string {
	c := r.Counts()
	if r.Mode == ModePlan {
		return fmt.Sprintf("%s: %d resources, %d to create, %d already exist, %d failed",
			r.Status(), len(r.Entries), c[OutcomeWouldCreate], c[OutcomeAlreadyExists], c[OutcomeFailed])
	}
	return fmt.Sprintf("%s: %d resources, %d created, %d already exist, %d failed",
		r.Status(), len(r.Entries), c[OutcomeCreated], c[OutcomeAlreadyExists], c[OutcomeFailed])
}
