package catalog

import "strings"

// ResourceKind identifies the type of a catalog resource
type ResourceKind string

const (
	// KindCatalog is the top-level namespace
	KindCatalog ResourceKind = "Catalog"

	// KindExternalLocation is a credentialed binding to a storage path
	KindExternalLocation ResourceKind = "ExternalLocation"

	// KindSchema is a namespace within a catalog
	KindSchema ResourceKind = "Schema"

	// KindVolume is a storage mount within a schema
	KindVolume ResourceKind = "Volume"
)

// SchemaKind tells whether the catalog system owns the schema storage
type SchemaKind string

const (
	// SchemaKindManaged schemas use storage owned by the catalog system
	SchemaKindManaged SchemaKind = "Managed"

	// SchemaKindExternal schemas store data under an explicitly declared path
	SchemaKindExternal SchemaKind = "External"
)

// VolumeKind tells whether the catalog system owns the volume storage
type VolumeKind string

const (
	// VolumeKindExternal volumes are backed by an external location
	VolumeKindExternal VolumeKind = "External"
)

// Resource is implemented by every creatable catalog resource
type Resource interface {
	// Kind returns the resource kind
	Kind() ResourceKind

	// QualifiedName returns the name qualified by its owning scope
	QualifiedName() string
}

// CatalogSpec declares the root catalog
type CatalogSpec struct {
	Name string
}

// StorageCredentialRef references a pre-existing storage credential by name
type StorageCredentialRef struct {
	Name string
}

// CredentialHandle is a resolved storage credential
type CredentialHandle struct {
	Name string
	ID   string
}

// ExternalLocationSpec declares a named binding from the catalog to a storage path
type ExternalLocationSpec struct {
	Name           string
	Path           string
	CredentialName string

	// Credential is the resolved credential, set before the location is created
	Credential CredentialHandle
}

// SchemaSpec declares a schema within a catalog
type SchemaSpec struct {
	Name    string
	Catalog string
	Type    SchemaKind

	// ExternalLocation names the location backing an External schema
	ExternalLocation string

	// StorageRoot is the path of ExternalLocation, set before an External schema is created
	StorageRoot string

	// Comment is a free-form description passed to the catalog system
	Comment string
}

// VolumeSpec declares an external volume within a schema
type VolumeSpec struct {
	Name             string
	Catalog          string
	Schema           string
	Type             VolumeKind
	ExternalLocation string

	// StorageLocation is the path of ExternalLocation, set before the volume is created
	StorageLocation string
}

// Kind implements Resource
func (CatalogSpec) Kind() ResourceKind { return KindCatalog }

// QualifiedName implements Resource
func (c CatalogSpec) QualifiedName() string { return c.Name }

// Kind implements Resource
func (ExternalLocationSpec) Kind() ResourceKind { return KindExternalLocation }

// QualifiedName implements Resource. External locations are metastore scoped.
func (l ExternalLocationSpec) QualifiedName() string { return l.Name }

// Kind implements Resource
func (SchemaSpec) Kind() ResourceKind { return KindSchema }

// QualifiedName implements Resource
func (s SchemaSpec) QualifiedName() string { return QualifyName(s.Catalog, s.Name) }

// Kind implements Resource
func (VolumeSpec) Kind() ResourceKind { return KindVolume }

// QualifiedName implements Resource
func (v VolumeSpec) QualifiedName() string { return QualifyName(v.Catalog, v.Schema, v.Name) }

// QualifyName joins name parts with dots
func QualifyName(parts ...string) string {
	return strings.Join(parts, ".")
}

// SplitQualifiedName splits a qualified name into its parts and checks that it has the
// number of parts expected for the given kind.
func SplitQualifiedName(kind ResourceKind, qualifiedName string) ([]string, error) {
	parts := strings.Split(qualifiedName, ".")
	want := 1
	switch kind {
	case KindCatalog, KindExternalLocation:
		want = 1
	case KindSchema:
		want = 2
	case KindVolume:
		want = 3
	default:
		return nil, &InvalidNameError{Kind: kind, Name: qualifiedName, Reason: "unknown resource kind"}
	}

	if len(parts) != want {
		return nil, &InvalidNameError{Kind: kind, Name: qualifiedName, Reason: "wrong number of name parts"}
	}
	for _, p := range parts {
		if p == "" {
			return nil, &InvalidNameError{Kind: kind, Name: qualifiedName, Reason: "empty name part"}
		}
	}
	return parts, nil
}
