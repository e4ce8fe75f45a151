package database

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPgx5URL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", toPgx5URL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", toPgx5URL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://u@h/db", toPgx5URL("pgx5://u@h/db"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	t.Parallel()

	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestMigrations(t *testing.T) {
	t.Parallel()

	db, cleanupFunc := SetupTestDB(t)
	t.Cleanup(cleanupFunc)

	connString := db.Config().ConnString()

	m, err := NewFromConnectionString(connString)
	require.NoError(t, err)
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)

	fnames, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	assert.Equal(t, uint(len(fnames)), version)

	// down, up again
	require.NoError(t, m.Steps(-len(fnames)))
	require.NoError(t, m.Steps(len(fnames)))

	// idempotent
	assert.NoError(t, MigrateUp(connString))

	var tables int
	err = db.QueryRow(context.Background(),
		`SELECT count(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name IN
		 ('storage_credential', 'catalog', 'external_location', 'catalog_schema', 'volume')`).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 5, tables)
}
