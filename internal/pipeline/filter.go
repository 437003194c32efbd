package pipeline

import (
	"path/filepath"
)

// ShouldIgnore reports whether a file name matches any of the glob patterns.
// Patterns are matched against the base name only, since both detection
// paths are limited to the top level of the source directory.
func ShouldIgnore(name string, ignoreList []string) bool {
	base := filepath.Base(name)

	for _, pattern := range ignoreList {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}

	return false
}
