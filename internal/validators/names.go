// Package validators provides validation functions for catalog object names and storage paths.
package validators

import (
	"fmt"
	"regexp"
	"strings"
)

const maxObjectNameLength = 255

// Object names are used unquoted in qualified names, so dots and spaces are excluded
var objectNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidateObjectName validates the name of a catalog, schema, volume, external location
// or storage credential. field names the configuration key in error messages.
//
// Examples of valid names:
//   - ecom_lakehouse
//   - landing_ext_loc
//   - _scratch-2
//
// Examples of invalid names:
//   - ecom lakehouse (space)
//   - main.files (dot is the qualified name separator)
//   - 1st_catalog (starts with a digit)
func ValidateObjectName(field, name string) error {
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(name) > maxObjectNameLength {
		return fmt.Errorf("%s exceeds maximum length of %d characters", field, maxObjectNameLength)
	}
	if !objectNamePattern.MatchString(name) {
		return fmt.Errorf("%s '%s' must start with a letter or underscore and contain only letters, digits, '_' or '-'",
			field, name)
	}
	return nil
}

// IsValidObjectName checks if a name is a valid catalog object name.
func IsValidObjectName(name string) bool {
	return ValidateObjectName("name", name) == nil
}

// hasParentSegment reports whether a slash separated path climbs out of its root
func hasParentSegment(p string) bool {
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
