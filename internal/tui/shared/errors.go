package shared

import (
	"fmt"
	"strings"

	"github.com/joe/tidy-files/pkg/errors"
)

// ErrorLimit is how many copy failures the result screen shows in full.
const ErrorLimit = 10

// RenderErrorList renders one entry per failure, each with its suggestions,
// up to ErrorLimit entries followed by an overflow line.
func RenderErrorList(failures []errors.ActionableError) string {
	if len(failures) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, failure := range failures {
		if i >= ErrorLimit {
			fmt.Fprintf(&builder, "... and %d more error(s), see the log file\n", len(failures)-ErrorLimit)
			break
		}

		fmt.Fprintf(&builder, "  %s%s\n", ErrorStyle().Render(CrossMark), failure.Error())

		suggestions := errors.FormatSuggestions(failure)
		if suggestions != "" {
			fmt.Fprintf(&builder, "    %s\n", strings.ReplaceAll(suggestions, "\n", "\n    "))
		}
	}

	return builder.String()
}
