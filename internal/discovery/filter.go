package discovery

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExcludeFilter decides which entries a scan leaves out, using doublestar
// glob patterns matched case-insensitively.
type ExcludeFilter struct {
	patterns []string
}

// NewExcludeFilter normalizes patterns and drops the invalid ones, which are
// returned so the caller can report them.
func NewExcludeFilter(patterns []string) (*ExcludeFilter, []string) {
	filter := &ExcludeFilter{}

	var invalid []string

	for _, pattern := range patterns {
		normalized := strings.ToLower(filepath.ToSlash(strings.TrimSpace(pattern)))
		if normalized == "" {
			continue
		}

		if !doublestar.ValidatePattern(normalized) {
			invalid = append(invalid, pattern)
			continue
		}

		filter.patterns = append(filter.patterns, normalized)
	}

	return filter, invalid
}

// Excludes reports whether the entry at relativePath matches any pattern.
// A pattern without a slash also matches the entry's base name at any depth,
// so "*.tmp" excludes "a/b/c.tmp".
func (f *ExcludeFilter) Excludes(relativePath string) bool {
	if f == nil || len(f.patterns) == 0 {
		return false
	}

	normalizedPath := strings.ToLower(filepath.ToSlash(relativePath))
	base := normalizedPath[strings.LastIndex(normalizedPath, "/")+1:]

	for _, pattern := range f.patterns {
		// Patterns were validated in NewExcludeFilter
		if matched, _ := doublestar.Match(pattern, normalizedPath); matched {
			return true
		}

		if !strings.Contains(pattern, "/") {
			if matched, _ := doublestar.Match(pattern, base); matched {
				return true
			}
		}
	}

	return false
}
