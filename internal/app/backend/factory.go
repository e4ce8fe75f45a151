// Package backend creates the catalog.Client for the configured backend type and owns
// the resources behind it (HTTP transport, database pool).
package backend

import (
	"context"
	"fmt"
	"slices"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates the catalog client for one backend and manages its lifecycle.
type Factory interface {
	// Name returns the backend type, as recorded in reports
	Name() string

	// CreateClient returns the catalog client. Repeated calls return the same client.
	CreateClient(ctx context.Context) (catalog.Client, error)

	// Cleanup releases any resources held by this factory.
	// For database factories, this closes the connection pool.
	// Should be called when the application shuts down.
	Cleanup()
}

// NewFactory creates a factory based on the configured backend type.
// The memory backend starts empty apart from the storage credentials the environment
// references, which it treats as pre-existing.
func NewFactory(ctx context.Context, cfg *config.Config) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Backend.Type {
	case config.BackendTypeUnity:
		return NewUnityFactory(cfg.Backend.Unity)
	case config.BackendTypePostgres:
		return NewDatabaseFactory(ctx, cfg.Backend.Database)
	case config.BackendTypeMemory:
		return NewMemoryFactory(referencedCredentials(&cfg.Environment)...), nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Backend.Type)
	}
}

func referencedCredentials(env *config.EnvironmentConfig) []string {
	names := []string{env.CredentialName}
	for _, loc := range env.ExternalLocations {
		if name := loc.GetCredentialName(env.CredentialName); !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}
