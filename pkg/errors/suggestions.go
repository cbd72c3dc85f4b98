package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and affected path.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryPermission:
		return g.permission(affectedPath)
	case CategoryDiskSpace:
		return g.diskSpace(affectedPath)
	case CategoryName:
		return g.name(affectedPath)
	case CategoryPath:
		return g.path(affectedPath)
	case CategoryCopy:
		return g.copy(affectedPath)
	case CategoryUnknown:
		return g.unknown(affectedPath)
	default:
		return g.unknown(affectedPath)
	}
}

func (g *suggestionGenerator) copy(path string) []string {
	suggestions := []string{
		"Run the copy again: already copied files are tracked and will not be repeated",
		"Check that the source and output drives are still connected",
	}

	if path != "" {
		suggestions = append(suggestions, "Make sure nothing else is writing to "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) diskSpace(path string) []string {
	suggestions := []string{
		"Free up space on the output drive or choose another output folder",
		"Check available space with 'df -h'",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify disk usage for the filesystem containing "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) name(path string) []string {
	suggestions := []string{
		"Rename the category so it is a valid folder name on the output drive",
		"Shorten very long file or category names",
	}

	if path != "" {
		suggestions = append(suggestions, "Check that no file sits where a folder is expected in "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) path(path string) []string {
	suggestions := []string{
		"Discover files again: the source may have been moved or deleted since the last scan",
	}

	if path != "" {
		suggestions = append(suggestions, "Check if the path exists: "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) permission(path string) []string {
	suggestions := []string{
		"Ensure you can read the source folders and write to the output folder",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -la %s'", path))
	} else {
		suggestions = append(suggestions, "Check permissions with 'ls -la' on the affected path")
	}

	return suggestions
}

func (g *suggestionGenerator) unknown(path string) []string {
	suggestions := []string{
		"Check the log file for more details",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}
