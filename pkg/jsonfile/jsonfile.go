// Package jsonfile reads and writes a single indented JSON document.
//
// Every store under the data directory persists itself this way: a missing
// file is an empty default, and a save rewrites the whole document.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Exported constants.
const (
	// DirPermissions is the mode used for created parent directories
	DirPermissions = 0o750
	// FilePermissions is the mode used for saved documents
	FilePermissions = 0o600
)

// ErrMalformed wraps decode failures so callers can tell a corrupt document
// from an unreadable one.
var ErrMalformed = errors.New("malformed JSON document")

// Load decodes the document at path into target. found is false, with a nil
// error, when the file does not exist. A document that does not decode
// returns an error wrapping ErrMalformed and leaves target unspecified.
func Load(path string, target any) (found bool, err error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the data directory
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	err = json.Unmarshal(data, target)
	if err != nil {
		return true, fmt.Errorf("%w in %s: %w", ErrMalformed, path, err)
	}

	return true, nil
}

// Save writes value to path as indented JSON, creating parent directories and
// replacing any existing file.
func Save(path string, value any) error {
	err := os.MkdirAll(filepath.Dir(path), DirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	err = os.WriteFile(path, append(data, '\n'), FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
