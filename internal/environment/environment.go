// Package environment builds the desired state of a lakehouse environment from configuration.
//
// The schema set is fixed to the four medallion zones: files holds the landing volume,
// bronze and silver are managed, gold is external and bound to its own location.
package environment

import (
	"github.com/stacklok/lakehouse-bootstrap/internal/catalog"
	"github.com/stacklok/lakehouse-bootstrap/internal/config"
)

// Fixed schema names, in creation order
const (
	SchemaFiles  = "files"
	SchemaBronze = "bronze"
	SchemaSilver = "silver"
	SchemaGold   = "gold"
)

// Spec is the desired state handed to the reconciler
type Spec struct {
	Catalog           catalog.CatalogSpec
	Credential        catalog.StorageCredentialRef
	ExternalLocations []catalog.ExternalLocationSpec
	Schemas           []catalog.SchemaSpec
	Volume            catalog.VolumeSpec
}

// FromConfig builds a Spec from validated environment configuration
func FromConfig(cfg *config.EnvironmentConfig) *Spec {
	locations := make([]catalog.ExternalLocationSpec, 0, len(cfg.ExternalLocations))
	for _, loc := range cfg.ExternalLocations {
		locations = append(locations, catalog.ExternalLocationSpec{
			Name:           loc.Name,
			Path:           loc.Path,
			CredentialName: loc.GetCredentialName(cfg.CredentialName),
		})
	}

	return &Spec{
		Catalog:           catalog.CatalogSpec{Name: cfg.CatalogName},
		Credential:        catalog.StorageCredentialRef{Name: cfg.CredentialName},
		ExternalLocations: locations,
		Schemas:           Schemas(cfg.CatalogName, cfg.GetGoldExternalLocationName()),
		Volume: catalog.VolumeSpec{
			Name:             cfg.Volume.Name,
			Catalog:          cfg.CatalogName,
			Schema:           cfg.GetVolumeSchema(),
			Type:             catalog.VolumeKindExternal,
			ExternalLocation: cfg.Volume.ExternalLocationName,
		},
	}
}

// Schemas returns the fixed medallion schema set for a catalog
func Schemas(catalogName, goldLocation string) []catalog.SchemaSpec {
	return []catalog.SchemaSpec{
		// Managed namespace; the external binding belongs to the landing volume
		{
			Name:    SchemaFiles,
			Catalog: catalogName,
			Type:    catalog.SchemaKindManaged,
			Comment: "Landing zone namespace for the external raw-file volume",
		},
		{
			Name:    SchemaBronze,
			Catalog: catalogName,
			Type:    catalog.SchemaKindManaged,
			Comment: "Raw ingested tables",
		},
		{
			Name:    SchemaSilver,
			Catalog: catalogName,
			Type:    catalog.SchemaKindManaged,
			Comment: "Cleaned and conformed tables",
		},
		{
			Name:             SchemaGold,
			Catalog:          catalogName,
			Type:             catalog.SchemaKindExternal,
			ExternalLocation: goldLocation,
			Comment:          "Business-level aggregates",
		},
	}
}

// Location returns the declared external location with the given name
func (s *Spec) Location(name string) (catalog.ExternalLocationSpec, bool) {
	for _, loc := range s.ExternalLocations {
		if loc.Name == name {
			return loc, true
		}
	}
	return catalog.ExternalLocationSpec{}, false
}

// ResourceCount returns how many report entries a full run produces
func (s *Spec) ResourceCount() int {
	// catalog + locations + schemas + volume
	return 1 + len(s.ExternalLocations) + len(s.Schemas) + 1
}
