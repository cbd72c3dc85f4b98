// Package discovery walks source folders and describes every regular file
// found in them.
package discovery

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/model"
	"github.com/joe/tidy-files/pkg/fileops"
	"github.com/joe/tidy-files/pkg/filesystem"
)

// Tracker answers whether a source file was already copied.
type Tracker interface {
	IsTracked(path string) bool
}

// Options tune a discovery run.
type Options struct {
	// ExcludeTracked leaves out files the tracker reports as already copied.
	ExcludeTracked bool
	// Exclude holds glob patterns for files and directories to leave out,
	// relative to each source folder.
	Exclude []string
}

// Engine discovers files. It does not modify the filesystem.
type Engine struct {
	fsys    filesystem.FileSystem
	ops     *fileops.FileOps
	tracker Tracker
	log     zerolog.Logger
}

// NewEngine returns an Engine reading from fsys. tracker may be nil, in which
// case Options.ExcludeTracked has no effect.
func NewEngine(fsys filesystem.FileSystem, tracker Tracker, log zerolog.Logger) *Engine {
	return &Engine{
		fsys:    fsys,
		ops:     fileops.NewFileOps(fsys),
		tracker: tracker,
		log:     log.With().Str("component", "discovery").Logger(),
	}
}

// Discover returns a record for every regular file below each folder, folders
// in the given order. A folder given as a symbolic link is walked through the
// link and its records keep the folder's spelling. Missing, unreadable and
// non-directory folders are skipped with a warning. A folder
// whose walk fails contributes nothing; the failure is logged and discovery
// moves on to the next folder.
func (e *Engine) Discover(folders []string, opts Options) []model.FileRecord {
	filter, invalid := NewExcludeFilter(opts.Exclude)
	for _, pattern := range invalid {
		e.log.Warn().Str("pattern", pattern).Msg("ignoring invalid exclude pattern")
	}

	records := []model.FileRecord{}

	for _, folder := range folders {
		info, err := e.fsys.Stat(folder)

		switch {
		case errors.Is(err, fs.ErrNotExist):
			e.log.Warn().Str("folder", folder).Msg("source folder does not exist, skipping")
			continue
		case err != nil:
			e.log.Warn().Err(err).Str("folder", folder).Msg("cannot access source folder, skipping")
			continue
		case !info.IsDir():
			e.log.Warn().Str("folder", folder).Msg("source folder is not a directory, skipping")
			continue
		}

		found, err := e.scanFolder(folder, filter, opts)
		if err != nil {
			e.log.Error().Err(err).Str("folder", folder).Msg("failed to scan source folder, skipping")
			continue
		}

		e.log.Info().Str("folder", folder).Int("files", len(found)).Msg("scanned source folder")

		records = append(records, found...)
	}

	return records
}

// Metadata describes the regular file at path. It returns false when the
// file does not exist, is not a regular file, or cannot be read.
func (e *Engine) Metadata(path string) (model.FileRecord, bool) {
	info, err := e.fsys.Stat(path)
	if err != nil {
		e.log.Debug().Err(err).Str("path", path).Msg("no metadata")
		return model.FileRecord{}, false
	}

	if !info.Mode().IsRegular() {
		return model.FileRecord{}, false
	}

	return model.FileRecord{
		Path:       path,
		Name:       filepath.Base(path),
		Size:       info.Size(),
		CreatedAt:  filesystem.CreationTime(info),
		ModifiedAt: info.ModTime(),
	}, true
}

// Preview returns the first lines of a text file, or a message saying why it
// could not be read.
func (e *Engine) Preview(path string, lines int) string {
	text, err := e.ops.PreviewLines(path, lines)
	if errors.Is(err, fs.ErrNotExist) {
		return "File not found."
	}

	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("failed to preview file")
		return "Error reading file: " + err.Error()
	}

	return text
}

func (e *Engine) scanFolder(folder string, filter *ExcludeFilter, opts Options) ([]model.FileRecord, error) {
	scanner := filesystem.NewScanner(e.fsys, folder, func(rel string, _ bool) bool {
		return filter.Excludes(rel)
	})

	var found []model.FileRecord

	for file, ok := scanner.Next(); ok; file, ok = scanner.Next() {
		if opts.ExcludeTracked && e.tracker != nil && e.tracker.IsTracked(file.Path) {
			continue
		}

		found = append(found, model.FileRecord{
			Path:       file.Path,
			Name:       filepath.Base(file.Path),
			Size:       file.Size,
			CreatedAt:  file.CreatedAt,
			ModifiedAt: file.ModTime,
		})
	}

	err := scanner.Err()
	if err != nil {
		return nil, err //nolint:wrapcheck // the scanner error already names the failing path
	}

	return found, nil
}
