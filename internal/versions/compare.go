package versions

import "github.com/Masterminds/semver/v3"

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion.
// Both are compared as semantic versions; if either does not parse (development
// builds are named "build-<commit>"), neither is considered newer.
func IsNewerVersion(newVersion, oldVersion string) bool {
	newSemver, errNew := semver.NewVersion(newVersion)
	oldSemver, errOld := semver.NewVersion(oldVersion)
	if errNew != nil || errOld != nil {
		return false
	}
	return newSemver.GreaterThan(oldSemver)
}
