// Package tracking remembers which source files have already been copied so
// that repeated runs do not copy them again.
package tracking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/model"
	"github.com/joe/tidy-files/pkg/jsonfile"
)

// Store is a set of copy records keyed by source path, compared
// case-insensitively, and persisted as a JSON array.
//
// Store is not safe for concurrent use.
type Store struct {
	path string
	log  zerolog.Logger

	records []model.CopyRecord
	index   map[string]int

	// Now returns the copy time stamped on new records.
	Now func() time.Time
}

// NewStore returns an empty store persisted at path. Call Load to read it.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path:  path,
		log:   log.With().Str("store", "tracking").Logger(),
		index: map[string]int{},
		Now:   time.Now,
	}
}

// Add records that source was copied to destination. The first record for a
// source wins; later calls for the same source are ignored.
func (s *Store) Add(source, destination, category string) {
	if s.IsTracked(source) {
		return
	}

	s.insert(model.CopyRecord{
		SourceFilePath:      source,
		DestinationFilePath: destination,
		Category:            category,
		CopiedAt:            s.Now().UTC(),
	})
}

// Clear drops all records.
func (s *Store) Clear() {
	s.records = nil
	s.index = map[string]int{}
}

// IsTracked reports whether source has a copy record.
func (s *Store) IsTracked(source string) bool {
	_, ok := s.index[key(source)]
	return ok
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Load replaces the records with the content of the tracking file. A missing
// file gives an empty store. An unreadable or malformed file is logged and
// also gives an empty store, so startup is never blocked.
func (s *Store) Load() {
	s.Clear()

	var loaded []model.CopyRecord

	found, err := jsonfile.Load(s.path, &loaded)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("could not load tracking file, starting empty")
		return
	}

	if !found {
		s.log.Debug().Str("path", s.path).Msg("no tracking file yet")
		return
	}

	for _, record := range loaded {
		if s.IsTracked(record.SourceFilePath) {
			continue
		}

		s.insert(record)
	}

	s.log.Debug().Int("records", len(s.records)).Msg("tracking file loaded")
}

// Path returns the location of the tracking file.
func (s *Store) Path() string {
	return s.path
}

// Records returns a copy of all records in insertion order.
func (s *Store) Records() []model.CopyRecord {
	return slices.Clone(s.records)
}

// Remove forgets source. It reports whether a record was removed.
func (s *Store) Remove(source string) bool {
	idx, ok := s.index[key(source)]
	if !ok {
		return false
	}

	s.records = slices.Delete(s.records, idx, idx+1)
	s.reindex()

	return true
}

// Save writes all records to the tracking file.
func (s *Store) Save() error {
	records := s.records
	if records == nil {
		records = []model.CopyRecord{}
	}

	err := jsonfile.Save(s.path, records)
	if err != nil {
		return fmt.Errorf("failed to save tracking records: %w", err)
	}

	return nil
}

func (s *Store) insert(record model.CopyRecord) {
	s.index[key(record.SourceFilePath)] = len(s.records)
	s.records = append(s.records, record)
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.records))
	for i, record := range s.records {
		s.index[key(record.SourceFilePath)] = i
	}
}

func key(path string) string {
	return strings.ToLower(path)
}
