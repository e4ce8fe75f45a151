package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStoragePath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		path        string
		expectError string
	}{
		{name: "absolute path", path: "/files/landing/"},
		{name: "absolute without trailing slash", path: "/gold"},
		{name: "s3 uri", path: "s3://ecom-lake/gold/"},
		{name: "abfss uri", path: "abfss://landing@ecomlake.dfs.core.windows.net/files/landing/"},
		{name: "bucket root", path: "gs://ecom-lake"},
		{name: "empty", path: "", expectError: "cannot be empty"},
		{name: "relative", path: "files/landing/", expectError: "must be absolute"},
		{name: "whitespace", path: "/files/my landing/", expectError: "whitespace"},
		{name: "parent segment", path: "/files/../gold/", expectError: "'..' segments"},
		{name: "parent segment in uri", path: "s3://ecom-lake/a/../b", expectError: "'..' segments"},
		{name: "uri without bucket", path: "s3:///gold/", expectError: "must name a bucket"},
		{name: "uri with query", path: "s3://ecom-lake/gold/?versionId=1", expectError: "query or fragment"},
		{name: "dots inside a segment", path: "/files/v1..2/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStoragePath(tt.path)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}
