package catalog

import "context"

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

// Client is the capability interface to the managed catalog system.
// Every call may block on network I/O.
type Client interface {
	// Exists reports whether a resource of the given kind and qualified name exists
	Exists(ctx context.Context, kind ResourceKind, qualifiedName string) (bool, error)

	// Create creates the resource. It returns an error wrapping ErrResourceConflict
	// if the resource already exists; callers are expected to check Exists first.
	Create(ctx context.Context, resource Resource) error

	// GetCredential resolves a storage credential by name. It returns an error
	// wrapping ErrCredentialNotFound if the credential does not exist.
	GetCredential(ctx context.Context, name string) (CredentialHandle, error)
}
