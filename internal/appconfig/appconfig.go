// Package appconfig stores the folders chosen in the menu: the source folders
// to discover files in and the output folder to copy them to.
package appconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/model"
	"github.com/joe/tidy-files/pkg/fileops"
	"github.com/joe/tidy-files/pkg/filesystem"
	"github.com/joe/tidy-files/pkg/jsonfile"
)

// Errors returned when a folder cannot be used.
var (
	ErrEmptyPath    = errors.New("path is empty")
	ErrNotDirectory = errors.New("not a directory")
)

// Store holds the application folder settings, persisted as a JSON document.
// Callers save after each mutation. Store is not safe for concurrent use.
type Store struct {
	path string
	ops  *fileops.FileOps
	log  zerolog.Logger

	config model.AppConfig
}

// NewStore returns an empty store persisted at path, checking folders
// through fsys. Call Load to read it.
func NewStore(path string, fsys filesystem.FileSystem, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		ops:  fileops.NewFileOps(fsys),
		log:  log.With().Str("store", "appconfig").Logger(),
	}
}

// AddSourceFolder adds dir to the source folders. It reports false, with a
// nil error, when dir is already present. dir must be an existing directory.
func (s *Store) AddSourceFolder(dir string) (bool, error) {
	dir, err := normalize(dir)
	if err != nil {
		return false, err
	}

	info, err := s.ops.Stat(dir)
	if err != nil {
		return false, err //nolint:wrapcheck // Stat names the path
	}

	if !info.IsDir() {
		return false, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	if slices.ContainsFunc(s.config.SourceFolders, func(existing string) bool {
		return strings.EqualFold(existing, dir)
	}) {
		return false, nil
	}

	s.config.SourceFolders = append(s.config.SourceFolders, dir)
	s.log.Info().Str("folder", dir).Msg("source folder added")

	return true, nil
}

// ClearSourceFolders removes all source folders.
func (s *Store) ClearSourceFolders() {
	s.config.SourceFolders = nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() model.AppConfig {
	return model.AppConfig{
		SourceFolders: slices.Clone(s.config.SourceFolders),
		OutputFolder:  s.config.OutputFolder,
	}
}

// Load replaces the settings with the content of the file. A missing,
// unreadable or malformed file gives empty settings; failures are logged.
func (s *Store) Load() {
	s.config = model.AppConfig{}

	var loaded model.AppConfig

	found, err := jsonfile.Load(s.path, &loaded)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("could not load app config, starting empty")
		return
	}

	if !found {
		s.log.Debug().Str("path", s.path).Msg("no app config file yet")
		return
	}

	s.config = loaded
}

// Save writes the settings to the file.
func (s *Store) Save() error {
	config := s.config
	if config.SourceFolders == nil {
		config.SourceFolders = []string{}
	}

	err := jsonfile.Save(s.path, config)
	if err != nil {
		return fmt.Errorf("failed to save app config: %w", err)
	}

	return nil
}

// SetOutputFolder makes dir the output folder, creating it if needed.
func (s *Store) SetOutputFolder(dir string) error {
	dir, err := normalize(dir)
	if err != nil {
		return err
	}

	err = s.ops.EnsureDir(dir)
	if err != nil {
		return err //nolint:wrapcheck // EnsureDir names the folder
	}

	s.config.OutputFolder = dir
	s.log.Info().Str("folder", dir).Msg("output folder set")

	return nil
}

// normalize trims and cleans a user-typed path and makes it absolute.
func normalize(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", ErrEmptyPath
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid path %s: %w", dir, err)
	}

	return abs, nil
}
