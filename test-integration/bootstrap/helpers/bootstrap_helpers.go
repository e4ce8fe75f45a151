package helpers

import (
	"context"
	"errors"
	"fmt"

	"github.com/onsi/gomega"

	"github.com/stacklok/lakehouse-bootstrap/internal/app"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
)

// BootstrapTestHelper builds the application from a configuration file and runs it
type BootstrapTestHelper struct {
	ctx        context.Context
	configPath string
}

// NewBootstrapTestHelper creates a helper for the configuration at configPath
func NewBootstrapTestHelper(ctx context.Context, configPath string) *BootstrapTestHelper {
	return &BootstrapTestHelper{ctx: ctx, configPath: configPath}
}

// Reconcile runs one apply pass; each call builds a fresh application like a new process would
func (h *BootstrapTestHelper) Reconcile() (*report.Report, error) {
	return h.run((*app.BootstrapApp).Reconcile)
}

// Plan runs one plan pass
func (h *BootstrapTestHelper) Plan() (*report.Report, error) {
	return h.run((*app.BootstrapApp).Plan)
}

// LastReport loads the persisted report of a catalog
func (h *BootstrapTestHelper) LastReport(catalogName string) *report.Report {
	cfg := h.loadConfig()
	rep, err := report.NewFilePersistence(cfg.GetReportDirectory()).Load(h.ctx, catalogName)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return rep
}

func (h *BootstrapTestHelper) run(fn func(*app.BootstrapApp, context.Context) (*report.Report, error)) (
	rep *report.Report, err error,
) {
	bootstrapApp, err := app.NewBootstrapApp(h.ctx, app.WithConfig(h.loadConfig()))
	if err != nil {
		return nil, fmt.Errorf("failed to build app: %w", err)
	}
	defer func() {
		err = errors.Join(err, bootstrapApp.Close(h.ctx))
	}()

	return fn(bootstrapApp, h.ctx)
}

func (h *BootstrapTestHelper) loadConfig() *config.Config {
	cfg, err := config.LoadConfig(config.WithConfigPath(h.configPath))
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	return cfg
}

// QualifiedNames returns the qualified names of a report's entries in order
func QualifiedNames(rep *report.Report) []string {
	names := make([]string, 0, len(rep.Entries))
	for _, e := range rep.Entries {
		names = append(names, e.QualifiedName)
	}
	return names
}

// Outcomes returns the outcome of each entry keyed by qualified name
func Outcomes(rep *report.Report) map[string]report.Outcome {
	outcomes := make(map[string]report.Outcome, len(rep.Entries))
	for _, e := range rep.Entries {
		outcomes[e.QualifiedName] = e.Outcome
	}
	return outcomes
}
