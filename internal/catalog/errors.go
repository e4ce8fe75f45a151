package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceConflict is returned by Client.Create when the resource already exists
	ErrResourceConflict = errors.New("resource already exists")

	// ErrCredentialNotFound is returned by Client.GetCredential when no credential has the name
	ErrCredentialNotFound = errors.New("storage credential not found")

	// ErrUnsupportedResource is returned when a client is asked to create an unknown resource type
	ErrUnsupportedResource = errors.New("unsupported resource")
)

// InvalidNameError reports a qualified name that does not fit its resource kind
type InvalidNameError struct {
	Kind   ResourceKind
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s name %q: %s", e.Kind, e.Name, e.Reason)
}

// NewConflictError wraps ErrResourceConflict with the offending resource
func NewConflictError(kind ResourceKind, qualifiedName string) error {
	return fmt.Errorf("%s %q: %w", kind, qualifiedName, ErrResourceConflict)
}

// NewCredentialNotFoundError wraps ErrCredentialNotFound with the credential name
func NewCredentialNotFoundError(name string) error {
	return fmt.Errorf("credential %q: %w", name, ErrCredentialNotFound)
}
