// Package formatters renders sizes for display.
package formatters

import (
	"fmt"
	"math"
)

// sizeUnits are the suffixes used by FormatSize, smallest first.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"} //nolint:gochecknoglobals // read-only lookup table

// FormatBytes formats bytes into a compact human-readable form (e.g., "1.5 MB")
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatSize formats a file size for listings. Whole values print without
// decimals ("1 KB"), fractional ones with two ("1.50 KB"). The largest unit is TB.
func FormatSize(bytes int64) string {
	value := float64(bytes)
	order := 0

	for value >= 1024 && order < len(sizeUnits)-1 {
		order++
		value /= 1024
	}

	if value == math.Trunc(value) {
		return fmt.Sprintf("%.0f %s", value, sizeUnits[order])
	}

	return fmt.Sprintf("%.2f %s", value, sizeUnits[order])
}
