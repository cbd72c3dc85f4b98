package shared

import (
	"fmt"
	"time"

	"github.com/joe/tidy-files/pkg/formatters"
)

// FormatBytes formats bytes into human-readable format (e.g., "1.5 MB")
func FormatBytes(bytes int64) string {
	return formatters.FormatBytes(bytes)
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s")
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// PageCount returns how many pages of pageSize hold total items, at least one.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}

	return (total + pageSize - 1) / pageSize
}

// PageBounds returns the half-open item range [start, end) shown on page.
func PageBounds(page, pageSize, total int) (int, int) {
	start := min(page*pageSize, total)
	end := min(start+pageSize, total)

	return start, end
}
