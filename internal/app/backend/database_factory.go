package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog/pgcatalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
	"github.com/stacklok/lakehouse-bootstrap/internal/db"
)

// DatabaseFactory creates a PostgreSQL metastore client.
// The pool is opened when the factory is created and closed by Cleanup.
type DatabaseFactory struct {
	pool   *pgxpool.Pool
	client *pgcatalog.Client
}

var _ Factory = (*DatabaseFactory)(nil)

// NewDatabaseFactory opens a connection pool to the configured database.
func NewDatabaseFactory(ctx context.Context, cfg *config.DatabaseConfig) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required for backend type '%s'", config.BackendTypePostgres)
	}

	slog.InfoContext(ctx, "Creating database-backed catalog")

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	return NewDatabaseFactoryWithPool(pool), nil
}

// NewDatabaseFactoryWithPool wraps an existing pool
func NewDatabaseFactoryWithPool(pool *pgxpool.Pool) *DatabaseFactory {
	return &DatabaseFactory{
		pool:   pool,
		client: pgcatalog.New(pool),
	}
}

// Name implements Factory
func (*DatabaseFactory) Name() string {
	return config.BackendTypePostgres
}

// CreateClient implements Factory
func (d *DatabaseFactory) CreateClient(_ context.Context) (catalog.Client, error) {
	return d.client, nil
}

// Metastore returns the postgres client for administrative operations
func (d *DatabaseFactory) Metastore() *pgcatalog.Client {
	return d.client
}

// Cleanup releases resources held by the database factory.
// This closes the database connection pool and any active connections.
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}
