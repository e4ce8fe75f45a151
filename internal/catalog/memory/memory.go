// Package memory provides an in-memory catalog.Client.
//
// It is used for dry runs with the memory backend and as a realistic fake in tests.
// State lives only as long as the Client value.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
)

// Client is an in-memory catalog.Client
type Client struct {
	mu          sync.RWMutex
	credentials map[string]catalog.CredentialHandle
	resources   map[catalog.ResourceKind]map[string]catalog.Resource
	createCalls int
}

// Option configures a Client
type Option func(*Client)

// WithCredential registers a storage credential with a generated ID
func WithCredential(name string) Option {
	return func(c *Client) {
		c.credentials[name] = catalog.CredentialHandle{Name: name, ID: uuid.NewString()}
	}
}

// WithResource seeds an existing resource
func WithResource(res catalog.Resource) Option {
	return func(c *Client) {
		c.put(res)
	}
}

// New creates an empty in-memory catalog
func New(opts ...Option) *Client {
	c := &Client{
		credentials: make(map[string]catalog.CredentialHandle),
		resources:   make(map[catalog.ResourceKind]map[string]catalog.Resource),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exists implements catalog.Client
func (c *Client) Exists(_ context.Context, kind catalog.ResourceKind, qualifiedName string) (bool, error) {
	if _, err := catalog.SplitQualifiedName(kind, qualifiedName); err != nil {
		return false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.resources[kind][qualifiedName]
	return ok, nil
}

// Create implements catalog.Client
func (c *Client) Create(_ context.Context, res catalog.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++

	if err := c.checkParentLocked(res); err != nil {
		return err
	}
	if _, ok := c.resources[res.Kind()][res.QualifiedName()]; ok {
		return catalog.NewConflictError(res.Kind(), res.QualifiedName())
	}
	c.putLocked(res)
	return nil
}

// GetCredential implements catalog.Client
func (c *Client) GetCredential(_ context.Context, name string) (catalog.CredentialHandle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	handle, ok := c.credentials[name]
	if !ok {
		return catalog.CredentialHandle{}, catalog.NewCredentialNotFoundError(name)
	}
	return handle, nil
}

// CreateCalls returns how many times Create has been called, including failed calls
func (c *Client) CreateCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.createCalls
}

// Get returns a stored resource
func (c *Client) Get(kind catalog.ResourceKind, qualifiedName string) (catalog.Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.resources[kind][qualifiedName]
	return res, ok
}

// checkParentLocked mirrors the referential checks a real catalog performs on create
func (c *Client) checkParentLocked(res catalog.Resource) error {
	switch r := res.(type) {
	case catalog.CatalogSpec:
		return nil
	case catalog.ExternalLocationSpec:
		if _, ok := c.credentials[r.CredentialName]; !ok {
			return catalog.NewCredentialNotFoundError(r.CredentialName)
		}
	case catalog.SchemaSpec:
		if _, ok := c.resources[catalog.KindCatalog][r.Catalog]; !ok {
			return fmt.Errorf("catalog %q does not exist", r.Catalog)
		}
		if r.Type == catalog.SchemaKindExternal {
			if _, ok := c.resources[catalog.KindExternalLocation][r.ExternalLocation]; !ok {
				return fmt.Errorf("external location %q does not exist", r.ExternalLocation)
			}
		}
	case catalog.VolumeSpec:
		schema := catalog.QualifyName(r.Catalog, r.Schema)
		if _, ok := c.resources[catalog.KindSchema][schema]; !ok {
			return fmt.Errorf("schema %q does not exist", schema)
		}
		if _, ok := c.resources[catalog.KindExternalLocation][r.ExternalLocation]; !ok {
			return fmt.Errorf("external location %q does not exist", r.ExternalLocation)
		}
	default:
		return fmt.Errorf("%T: %w", res, catalog.ErrUnsupportedResource)
	}
	return nil
}

func (c *Client) put(res catalog.Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(res)
}

func (c *Client) putLocked(res catalog.Resource) {
	byName, ok := c.resources[res.Kind()]
	if !ok {
		byName = make(map[string]catalog.Resource)
		c.resources[res.Kind()] = byName
	}
	byName[res.QualifiedName()] = res
}
