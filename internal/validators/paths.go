package validators

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ValidateStoragePath validates the storage location of an external location.
// Accepted forms are an absolute path ("/gold/") or a storage URI with a scheme
// ("s3://bucket/gold/", "abfss://container@account.dfs.core.windows.net/gold/").
// Paths must not contain whitespace or ".." segments.
func ValidateStoragePath(p string) error {
	if p == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return fmt.Errorf("path '%s' must not contain whitespace", p)
	}

	if !strings.Contains(p, "://") {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("path '%s' must be absolute or a storage URI (e.g., s3://bucket/prefix/)", p)
		}
		if hasParentSegment(p) {
			return fmt.Errorf("path '%s' must not contain '..' segments", p)
		}
		return nil
	}

	parsed, err := url.Parse(p)
	if err != nil {
		return fmt.Errorf("path '%s' is not a valid storage URI: %w", p, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("storage URI '%s' must name a bucket or container", p)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("storage URI '%s' must not have a query or fragment", p)
	}
	if hasParentSegment(parsed.Path) {
		return fmt.Errorf("path '%s' must not contain '..' segments", p)
	}
	return nil
}
