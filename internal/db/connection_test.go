package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/lakehouse-bootstrap/internal/config"
)

func TestNewPool_InvalidConfig(t *testing.T) {
	t.Parallel()

	passwordFile := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte("secret\n"), 0600))

	tests := []struct {
		name          string
		cfg           *config.DatabaseConfig
		errorContains string
	}{
		{
			name:          "nil config",
			cfg:           nil,
			errorContains: "database configuration is required",
		},
		{
			name: "missing password file",
			cfg: &config.DatabaseConfig{
				Host: "localhost", Port: 5432, User: "lake", Database: "metastore",
				PasswordFile: filepath.Join(t.TempDir(), "missing"),
			},
			errorContains: "failed to build connection string",
		},
		{
			name: "invalid lifetime",
			cfg: &config.DatabaseConfig{
				Host: "localhost", Port: 5432, User: "lake", Database: "metastore",
				PasswordFile: passwordFile, ConnMaxLifetime: "forever",
			},
			errorContains: "invalid connection max lifetime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool, err := NewPool(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, pool)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}
