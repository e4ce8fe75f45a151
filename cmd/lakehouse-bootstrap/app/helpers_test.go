package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const memoryConfig = `environment:
  catalog_name: ecom_lakehouse
  credential_name: cred1
  external_locations:
    - {name: landing_ext_loc, path: /files/landing/}
    - {name: gold_ext_loc, path: /gold/}
  volume:
    name: landing
    schema: files
    external_location_name: landing_ext_loc
backend:
  type: memory
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
