package pgcatalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/lakehouse-bootstrap/database"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/environment"
	"github.com/stacklok/lakehouse-bootstrap/internal/reconciler"
	"github.com/stacklok/lakehouse-bootstrap/internal/report"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	res := catalog.SchemaSpec{Name: "bronze", Catalog: "main"}

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: uniqueViolation},
			wantErr: catalog.ErrResourceConflict,
		},
		{
			name:    "foreign key violation",
			err:     &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: "catalog_schema_catalog_id_fkey"},
			wantErr: ErrParentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := mapError(res, tt.err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "main.bronze")
		})
	}

	t.Run("other errors are wrapped", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection reset")
		err := mapError(res, cause)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, catalog.ErrResourceConflict)
	})
}

func TestClient_Postgres(t *testing.T) {
	t.Parallel()

	pool, cleanup := database.SetupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	client := New(pool)

	_, err := client.GetCredential(ctx, "cred1")
	require.ErrorIs(t, err, catalog.ErrCredentialNotFound)

	handle, err := client.RegisterCredential(ctx, "cred1")
	require.NoError(t, err)
	assert.NotEmpty(t, handle.ID)

	again, err := client.RegisterCredential(ctx, "cred1")
	require.NoError(t, err)
	assert.Equal(t, handle, again, "registering twice keeps the first id")

	err = client.Create(ctx, catalog.SchemaSpec{Name: "bronze", Catalog: "missing", Type: catalog.SchemaKindManaged})
	assert.ErrorIs(t, err, ErrParentNotFound)

	env := environment.FromConfig(&config.EnvironmentConfig{
		CatalogName:    "ecom_lakehouse",
		CredentialName: "cred1",
		ExternalLocations: []config.ExternalLocationConfig{
			{Name: "landing_ext_loc", Path: "/files/landing/"},
			{Name: "gold_ext_loc", Path: "/gold/"},
		},
		Volume: config.VolumeConfig{Name: "landing", Schema: "files", ExternalLocationName: "landing_ext_loc"},
	})

	first, err := reconciler.New().Reconcile(ctx, env, client)
	require.NoError(t, err)
	assert.True(t, first.Succeeded(), first.Summary())
	assert.Equal(t, 8, first.Counts()[report.OutcomeCreated])

	exists, err := client.Exists(ctx, catalog.KindVolume, "ecom_lakehouse.files.landing")
	require.NoError(t, err)
	assert.True(t, exists)

	var storageRoot string
	err = pool.QueryRow(ctx, `SELECT storage_root FROM catalog_schema WHERE name = 'gold'`).Scan(&storageRoot)
	require.NoError(t, err)
	assert.Equal(t, "/gold/", storageRoot)

	second, err := reconciler.New().Reconcile(ctx, env, client)
	require.NoError(t, err)
	assert.Equal(t, 8, second.Counts()[report.OutcomeAlreadyExists])

	err = client.Create(ctx, catalog.CatalogSpec{Name: "ecom_lakehouse"})
	assert.ErrorIs(t, err, catalog.ErrResourceConflict)
}
