package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// rule maps message fragments to a category. Rules are checked in order, so
// a message matching several fragments gets the first rule's category.
type rule struct {
	category ErrorCategory
	patterns []string
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		rules: []rule{
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"access is denied",
				"operation not permitted",
				"read-only file system",
			}},
			{CategoryDiskSpace, []string{
				"no space left on device",
				"disk full",
				"not enough space",
				"quota exceeded",
			}},
			{CategoryName, []string{
				"file name too long",
				"filename, directory name, or volume label syntax is incorrect",
				"invalid argument",
				"not a directory",
			}},
			{CategoryPath, []string{
				"no such file or directory",
				"does not exist",
				"cannot find the path",
				"cannot find the file",
				"file not found",
			}},
			{CategoryCopy, []string{
				"short write",
				"input/output error",
				"i/o error",
				"is a directory",
			}},
		},
	}
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	rules []rule
}

// Match returns the error category based on pattern matching (case-insensitive).
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, r := range m.rules {
		for _, pattern := range r.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return r.category
			}
		}
	}

	return CategoryUnknown
}
