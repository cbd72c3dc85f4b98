// Package classify assigns categories to discovered files and parses the
// user's file selections. The caller owns the records; these helpers only
// read or update the records they are handed.
package classify

import (
	"strconv"
	"strings"

	"github.com/joe/tidy-files/internal/model"
)

// Assign sets label as the category of every record and marks it classified.
// The label is not checked against the category store.
func Assign(records []*model.FileRecord, label string) {
	for _, record := range records {
		record.Category = label
		record.Classified = true
	}
}

// Unassign clears the category of every record.
func Unassign(records []*model.FileRecord) {
	for _, record := range records {
		record.Category = ""
		record.Classified = false
	}
}

// Classified returns pointers to the records that are ready to copy.
func Classified(records []model.FileRecord) []*model.FileRecord {
	var out []*model.FileRecord

	for i := range records {
		if records[i].IsReadyToCopy() {
			out = append(out, &records[i])
		}
	}

	return out
}

// Unclassified returns pointers to the records without a category.
func Unclassified(records []model.FileRecord) []*model.FileRecord {
	var out []*model.FileRecord

	for i := range records {
		if !records[i].IsReadyToCopy() {
			out = append(out, &records[i])
		}
	}

	return out
}

// Pick returns the records at the given 0-based indices, in index order.
// Indices outside the slice are ignored.
func Pick[T any](records []T, indices []int) []T {
	out := make([]T, 0, len(indices))

	for _, idx := range indices {
		if idx >= 0 && idx < len(records) {
			out = append(out, records[idx])
		}
	}

	return out
}

// Without returns records minus those whose path is in paths, comparing
// paths case-insensitively. The input slice is not modified.
func Without(records []model.FileRecord, paths []string) []model.FileRecord {
	if len(paths) == 0 {
		return records
	}

	drop := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		drop[strings.ToLower(path)] = struct{}{}
	}

	out := make([]model.FileRecord, 0, len(records))

	for _, record := range records {
		if _, ok := drop[strings.ToLower(record.Path)]; !ok {
			out = append(out, record)
		}
	}

	return out
}

// ParseSelection turns input such as "1,3-5" into 0-based indices. Tokens
// are 1-based integers or inclusive ranges a-b. Malformed tokens and numbers
// outside 1..maxCount are dropped, as are duplicates; the remaining indices
// keep the order in which they first appear.
func ParseSelection(input string, maxCount int) []int {
	selected := []int{}
	seen := map[int]bool{}

	add := func(n int) {
		if n < 1 || n > maxCount || seen[n] {
			return
		}

		seen[n] = true
		selected = append(selected, n-1)
	}

	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		if lo, hi, isRange := strings.Cut(token, "-"); isRange {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))

			if err1 != nil || err2 != nil {
				continue
			}

			for n := max(start, 1); n <= min(end, maxCount); n++ {
				add(n)
			}

			continue
		}

		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}

		add(n)
	}

	return selected
}
