package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/lakehouse-bootstrap/internal/versions"
)

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	info := versions.VersionInfo{
		Version:   "v1.2.0",
		Commit:    "abc1234",
		BuildDate: "2026-01-02 03:04:05 UTC",
		GoVersion: "go1.25.0",
		Platform:  "linux/amd64",
	}

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, printVersion(&buf, info, "json"))

		var got versions.VersionInfo
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, info, got)
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, printVersion(&buf, info, ""))

		assert.Contains(t, buf.String(), "lakehouse-bootstrap v1.2.0")
		assert.Contains(t, buf.String(), "commit:   abc1234")
		assert.Contains(t, buf.String(), "platform: linux/amd64")
	})
}
