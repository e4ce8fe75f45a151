// Package pgcatalog implements catalog.Client on a self-hosted metastore kept in PostgreSQL.
//
// The tables are created by the migrations in the database package. Uniqueness is
// enforced by the database, so a create that loses a race surfaces as a unique
// violation and is reported as catalog.ErrResourceConflict.
package pgcatalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// ErrParentNotFound is returned when a resource is created under a missing parent
var ErrParentNotFound = errors.New("parent resource not found")

// Client is a catalog.Client backed by PostgreSQL
type Client struct {
	pool *pgxpool.Pool
}

// New creates a Client on an open pool
func New(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Exists implements catalog.Client
func (c *Client) Exists(ctx context.Context, kind catalog.ResourceKind, qualifiedName string) (bool, error) {
	parts, err := catalog.SplitQualifiedName(kind, qualifiedName)
	if err != nil {
		return false, err
	}

	var query string
	switch kind {
	case catalog.KindCatalog:
		query = `SELECT EXISTS (SELECT 1 FROM catalog WHERE name = $1)`
	case catalog.KindExternalLocation:
		query = `SELECT EXISTS (SELECT 1 FROM external_location WHERE name = $1)`
	case catalog.KindSchema:
		query = `SELECT EXISTS (
			SELECT 1 FROM catalog_schema s
			JOIN catalog c ON c.id = s.catalog_id
			WHERE c.name = $1 AND s.name = $2)`
	case catalog.KindVolume:
		query = `SELECT EXISTS (
			SELECT 1 FROM volume v
			JOIN catalog_schema s ON s.id = v.schema_id
			JOIN catalog c ON c.id = s.catalog_id
			WHERE c.name = $1 AND s.name = $2 AND v.name = $3)`
	default:
		return false, fmt.Errorf("%w: %s", catalog.ErrUnsupportedResource, kind)
	}

	args := make([]any, len(parts))
	for i, p := range parts {
		args[i] = p
	}

	var exists bool
	if err := c.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query %s '%s': %w", kind, qualifiedName, err)
	}
	return exists, nil
}

// Create implements catalog.Client
func (c *Client) Create(ctx context.Context, res catalog.Resource) error {
	var (
		tag pgconn.CommandTag
		err error
	)

	switch r := res.(type) {
	case catalog.CatalogSpec:
		tag, err = c.pool.Exec(ctx,
			`INSERT INTO catalog (id, name) VALUES ($1, $2)`,
			uuid.New(), r.Name)
	case catalog.ExternalLocationSpec:
		credential := r.Credential.Name
		if credential == "" {
			credential = r.CredentialName
		}
		tag, err = c.pool.Exec(ctx,
			`INSERT INTO external_location (id, name, url, credential_id)
			 SELECT $1, $2, $3, id FROM storage_credential WHERE name = $4`,
			uuid.New(), r.Name, r.Path, credential)
	case catalog.SchemaSpec:
		tag, err = c.createSchema(ctx, r)
	case catalog.VolumeSpec:
		tag, err = c.pool.Exec(ctx,
			`INSERT INTO volume (id, schema_id, name, volume_type, external_location_id, storage_location)
			 SELECT $1, s.id, $2, 'EXTERNAL', l.id, $3
			 FROM catalog_schema s
			 JOIN catalog c ON c.id = s.catalog_id
			 JOIN external_location l ON l.name = $4
			 WHERE c.name = $5 AND s.name = $6`,
			uuid.New(), r.Name, r.StorageLocation, r.ExternalLocation, r.Catalog, r.Schema)
	default:
		return fmt.Errorf("%w: %T", catalog.ErrUnsupportedResource, res)
	}

	if err != nil {
		return mapError(res, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cannot create %s '%s'", ErrParentNotFound, res.Kind(), res.QualifiedName())
	}
	return nil
}

func (c *Client) createSchema(ctx context.Context, r catalog.SchemaSpec) (pgconn.CommandTag, error) {
	if r.Type == catalog.SchemaKindExternal {
		return c.pool.Exec(ctx,
			`INSERT INTO catalog_schema (id, catalog_id, name, schema_type, external_location_id, storage_root, comment)
			 SELECT $1, c.id, $2, 'EXTERNAL', l.id, $3, $4
			 FROM catalog c
			 JOIN external_location l ON l.name = $5
			 WHERE c.name = $6`,
			uuid.New(), r.Name, r.StorageRoot, r.Comment, r.ExternalLocation, r.Catalog)
	}
	return c.pool.Exec(ctx,
		`INSERT INTO catalog_schema (id, catalog_id, name, schema_type, comment)
		 SELECT $1, id, $2, 'MANAGED', $3 FROM catalog WHERE name = $4`,
		uuid.New(), r.Name, r.Comment, r.Catalog)
}

// GetCredential implements catalog.Client
func (c *Client) GetCredential(ctx context.Context, name string) (catalog.CredentialHandle, error) {
	var id uuid.UUID
	err := c.pool.QueryRow(ctx, `SELECT id FROM storage_credential WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.CredentialHandle{}, catalog.NewCredentialNotFoundError(name)
	}
	if err != nil {
		return catalog.CredentialHandle{}, fmt.Errorf("failed to query storage credential '%s': %w", name, err)
	}
	return catalog.CredentialHandle{Name: name, ID: id.String()}, nil
}

// RegisterCredential records an externally issued storage credential so that it can be
// referenced by external locations. Registering an existing name returns its handle.
func (c *Client) RegisterCredential(ctx context.Context, name string) (catalog.CredentialHandle, error) {
	_, err := c.pool.Exec(ctx,
		`INSERT INTO storage_credential (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name)
	if err != nil {
		return catalog.CredentialHandle{}, fmt.Errorf("failed to register storage credential '%s': %w", name, err)
	}
	return c.GetCredential(ctx, name)
}

func mapError(res catalog.Resource, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return catalog.NewConflictError(res.Kind(), res.QualifiedName())
		case foreignKeyViolation:
			return fmt.Errorf("%w: cannot create %s '%s': %s",
				ErrParentNotFound, res.Kind(), res.QualifiedName(), pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to create %s '%s': %w", res.Kind(), res.QualifiedName(), err)
}
