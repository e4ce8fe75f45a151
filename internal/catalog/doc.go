// Package catalog defines the resources managed by the lakehouse bootstrapper and the
// capability interface used to talk to the managed data catalog.
//
// # Resources
//
// Four resource kinds are managed:
//
//   - Catalog: the root namespace
//   - ExternalLocation: a credentialed binding to a storage path
//   - Schema: a namespace inside a catalog, Managed or External
//   - Volume: a non-tabular storage mount inside a schema
//
// Storage credentials are never created. They are referenced by name and resolved
// through Client.GetCredential.
//
// # Client
//
// Client is the only boundary to the catalog system. Implementations live in the
// memory, unity and pgcatalog subpackages; a gomock mock lives in mocks.
package catalog
