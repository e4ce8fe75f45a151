// Package integration provides end-to-end tests for the lakehouse bootstrapper.
// These tests build the full application from a configuration file and run it
// against the in-memory backend and a fake Unity Catalog server, covering
// first runs, re-runs, partial failures and persisted reports.
package integration
