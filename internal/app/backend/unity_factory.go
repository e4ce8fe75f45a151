package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog/unity"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
)

// UnityFactory creates a Unity Catalog REST client
type UnityFactory struct {
	client *unity.Client
}

var _ Factory = (*UnityFactory)(nil)

// NewUnityFactory resolves the token and builds the client
func NewUnityFactory(cfg *config.UnityConfig) (*UnityFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("unity configuration is required for backend type '%s'", config.BackendTypeUnity)
	}

	token, err := cfg.GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get unity token: %w", err)
	}

	client, err := unity.New(cfg.Host, unity.WithToken(token), unity.WithTimeout(cfg.GetTimeout()))
	if err != nil {
		return nil, err
	}

	slog.Info("Using Unity Catalog backend", "host", cfg.Host, "timeout", cfg.GetTimeout())
	return &UnityFactory{client: client}, nil
}

// Name implements Factory
func (*UnityFactory) Name() string {
	return config.BackendTypeUnity
}

// CreateClient implements Factory
func (f *UnityFactory) CreateClient(_ context.Context) (catalog.Client, error) {
	return f.client, nil
}

// Cleanup implements Factory. The HTTP client holds no resources that need releasing.
func (*UnityFactory) Cleanup() {}
