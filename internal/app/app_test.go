package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/lakehouse-bootstrap/internal/app/backend"
	backendmocks "github.com/stacklok/lakehouse-bootstrap/internal/app/backend/mocks"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	catalogmocks "github.com/stacklok/lakehouse-bootstrap/internal/catalog/mocks"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
	reportmocks "github.com/stacklok/lakehouse-bootstrap/internal/report/mocks"
	"github.com/stacklok/lakehouse-bootstrap/internal/telemetry"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: config.EnvironmentConfig{
			CatalogName:    "ecom_lakehouse",
			CredentialName: "cred1",
			ExternalLocations: []config.ExternalLocationConfig{
				{Name: "landing_ext_loc", Path: "/files/landing/"},
				{Name: "gold_ext_loc", Path: "/gold/"},
			},
			Volume: config.VolumeConfig{Name: "landing", Schema: "files", ExternalLocationName: "landing_ext_loc"},
		},
		Backend: config.BackendConfig{Type: config.BackendTypeMemory},
	}
}

func TestNewBootstrapApp_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewBootstrapApp(context.Background())
	assert.ErrorContains(t, err, "config is required")

	_, err = NewBootstrapApp(context.Background(), WithConfig(testConfig()), WithReportDirectory(""))
	assert.ErrorContains(t, err, "report directory cannot be empty")
}

func TestBootstrapApp_ReconcilePersistsReport(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	persistence := reportmocks.NewMockPersistence(ctrl)

	var saved *report.Report
	persistence.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *report.Report) error {
			saved = r
			return nil
		}).Times(2)

	ctx := context.Background()
	app, err := NewBootstrapApp(ctx,
		WithConfig(testConfig()),
		WithReportPersistence(persistence),
		WithTelemetry(telemetry.NewNoOp()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	rep, err := app.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Succeeded())
	assert.Equal(t, config.BackendTypeMemory, rep.Backend)
	assert.Equal(t, 8, rep.Counts()[report.OutcomeCreated])
	assert.Same(t, rep, saved)

	// same process, same in-memory catalog
	rep, err = app.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, rep.Counts()[report.OutcomeAlreadyExists])
}

func TestBootstrapApp_PlanIsNotPersisted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	persistence := reportmocks.NewMockPersistence(ctrl)
	persistence.EXPECT().Save(gomock.Any(), gomock.Any()).Times(0)

	ctx := context.Background()
	app, err := NewBootstrapApp(ctx,
		WithConfig(testConfig()),
		WithReportPersistence(persistence),
		WithTelemetry(telemetry.NewNoOp()),
	)
	require.NoError(t, err)

	rep, err := app.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.ModePlan, rep.Mode)
	assert.Equal(t, 8, rep.Counts()[report.OutcomeWouldCreate])
}

func TestBootstrapApp_FatalRunIsPersisted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := catalogmocks.NewMockClient(ctrl)
	client.EXPECT().GetCredential(gomock.Any(), "cred1").
		Return(catalog.CredentialHandle{}, catalog.NewCredentialNotFoundError("cred1"))

	factory := backendmocks.NewMockFactory(ctrl)
	factory.EXPECT().Name().Return("unity").AnyTimes()
	factory.EXPECT().CreateClient(gomock.Any()).Return(client, nil)
	factory.EXPECT().Cleanup()

	persistence := reportmocks.NewMockPersistence(ctrl)
	persistence.EXPECT().Save(gomock.Any(), gomock.Cond(func(r *report.Report) bool {
		return r.Fatal != "" && !r.Succeeded()
	})).Return(nil)

	ctx := context.Background()
	app, err := NewBootstrapApp(ctx,
		WithConfig(testConfig()),
		WithBackendFactory(factory),
		WithReportPersistence(persistence),
		WithTelemetry(telemetry.NewNoOp()),
	)
	require.NoError(t, err)

	rep, err := app.Reconcile(ctx)
	assert.ErrorIs(t, err, catalog.ErrCredentialNotFound)
	require.NotNil(t, rep)
	assert.Equal(t, "unity", rep.Backend)

	require.NoError(t, app.Close(ctx))
}

func TestBootstrapApp_PersistenceFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	persistence := reportmocks.NewMockPersistence(ctrl)
	persistence.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	ctx := context.Background()
	app, err := NewBootstrapApp(ctx,
		WithConfig(testConfig()),
		WithReportPersistence(persistence),
		WithTelemetry(telemetry.NewNoOp()),
	)
	require.NoError(t, err)

	rep, err := app.Reconcile(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist report")
	assert.True(t, rep.Succeeded(), "the catalog itself was reconciled")
}

func TestBootstrapApp_CleansUpWhenClientFails(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := backendmocks.NewMockFactory(ctrl)
	factory.EXPECT().CreateClient(gomock.Any()).Return(nil, errors.New("unreachable"))
	factory.EXPECT().Cleanup()

	_, err := NewBootstrapApp(context.Background(),
		WithConfig(testConfig()),
		WithBackendFactory(factory),
		WithoutReportPersistence(),
	)
	assert.ErrorContains(t, err, "failed to create catalog client")
}

func TestBootstrapApp_FilePersistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	app, err := NewBootstrapApp(ctx,
		WithConfig(testConfig()),
		WithBackendFactory(backend.NewMemoryFactory("cred1")),
		WithReportDirectory(dir),
		WithTelemetry(telemetry.NewNoOp()),
	)
	require.NoError(t, err)

	rep, err := app.Reconcile(ctx)
	require.NoError(t, err)

	loaded, err := report.NewFilePersistence(dir).Load(ctx, "ecom_lakehouse")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, rep.RunID, loaded.RunID)
	assert.Len(t, loaded.Entries, 8)
}
