package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewerVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		newVersion string
		oldVersion string
		expected   bool
	}{
		{name: "newer minor", newVersion: "v0.3.0", oldVersion: "v0.2.4", expected: true},
		{name: "newer patch without prefix", newVersion: "1.0.2", oldVersion: "1.0.1", expected: true},
		{name: "older", newVersion: "v0.2.0", oldVersion: "v0.3.0", expected: false},
		{name: "equal", newVersion: "v1.0.0", oldVersion: "v1.0.0", expected: false},
		{name: "release after prerelease", newVersion: "v1.0.0", oldVersion: "v1.0.0-rc.1", expected: true},
		{name: "development build", newVersion: "build-0123abcd", oldVersion: "v1.0.0", expected: false},
		{name: "development running binary", newVersion: "v1.0.0", oldVersion: "build-0123abcd", expected: false},
		{name: "empty", newVersion: "", oldVersion: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, IsNewerVersion(tt.newVersion, tt.oldVersion))
		})
	}
}
