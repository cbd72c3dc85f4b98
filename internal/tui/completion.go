package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxCompletionsShown caps the candidate list rendered under a prompt.
const maxCompletionsShown = 8

// getDirCompletions returns the directories that could complete input, each
// with a trailing separator. Hidden entries only show up when the typed
// prefix starts with a dot.
func getDirCompletions(input string) []string {
	if input == "" {
		input = "." + string(filepath.Separator)
	}

	// Expand ~ to home directory
	if strings.HasPrefix(input, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			input = filepath.Join(home, input[1:]) + trailingSeparator(input)
		}
	}

	dir := filepath.Dir(input)
	prefix := filepath.Base(input)

	// A trailing separator means we complete inside that directory
	if strings.HasSuffix(input, string(filepath.Separator)) {
		dir = input
		prefix = ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var completions []string

	for _, entry := range entries {
		name := entry.Name()

		if !entry.IsDir() {
			continue
		}

		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		if prefix == "" || strings.HasPrefix(name, prefix) {
			completions = append(completions, filepath.Join(dir, name)+string(filepath.Separator))
		}
	}

	sort.Strings(completions)

	return completions
}

func trailingSeparator(input string) string {
	if len(input) > 1 && strings.HasSuffix(input, string(filepath.Separator)) {
		return string(filepath.Separator)
	}

	return ""
}

// findCommonPrefix finds the longest common prefix among strs.
func findCommonPrefix(strs []string) string {
	if len(strs) == 0 {
		return ""
	}

	prefix := strs[0]
	for _, s := range strs[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return ""
			}
		}
	}

	return prefix
}
