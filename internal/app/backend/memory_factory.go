package backend

import (
	"context"
	"log/slog"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog/memory"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
)

// MemoryFactory creates an in-memory catalog that lives for the duration of the process
type MemoryFactory struct {
	client *memory.Client
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates an empty in-memory catalog. Credentials to seed it with may
// be given; use this for dry runs of a configuration.
func NewMemoryFactory(credentials ...string) *MemoryFactory {
	opts := make([]memory.Option, 0, len(credentials))
	for _, name := range credentials {
		opts = append(opts, memory.WithCredential(name))
	}
	return &MemoryFactory{client: memory.New(opts...)}
}

// Name implements Factory
func (*MemoryFactory) Name() string {
	return config.BackendTypeMemory
}

// CreateClient implements Factory
func (f *MemoryFactory) CreateClient(ctx context.Context) (catalog.Client, error) {
	slog.DebugContext(ctx, "Using in-memory catalog")
	return f.client, nil
}

// Cleanup implements Factory
func (*MemoryFactory) Cleanup() {}
