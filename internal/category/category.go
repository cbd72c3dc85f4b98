// Package category stores the user's categories. Each category name becomes
// a folder under the output root, so names are validated as folder names.
package category

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/model"
	"github.com/joe/tidy-files/pkg/jsonfile"
)

// Sentinel errors returned by Store mutations.
var (
	ErrExists      = errors.New("category already exists")
	ErrInvalidName = errors.New("invalid category name")
	ErrNotFound    = errors.New("category not found")
)

const maxNameLength = 255

//nolint:gochecknoglobals // compiled once, read-only
var forbiddenChars = regexp.MustCompile(`^[^<>:"/\\|?*\x00-\x1f]*$`)

// Store holds categories, unique by name ignoring case, persisted as a JSON
// array. Store is not safe for concurrent use.
type Store struct {
	path string
	log  zerolog.Logger

	categories []model.Category

	// Now returns the creation time stamped on new categories.
	Now func() time.Time
}

// NewStore returns an empty store persisted at path. Call Load to read it.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  log.With().Str("store", "categories").Logger(),
		Now:  time.Now,
	}
}

// ValidateName checks that name, once trimmed, can be used as a folder name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	err := validation.Validate(name,
		validation.Required.Error("must not be empty"),
		validation.Length(1, maxNameLength),
		validation.Match(forbiddenChars).Error(`must not contain any of <>:"/\|?* or control characters`),
		validation.NotIn(".", "..").Error("must not be . or .."),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidName, err)
	}

	return nil
}

// Create adds a category. The name is trimmed before it is stored.
func (s *Store) Create(name, description string) error {
	err := ValidateName(name)
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)

	if s.find(name) >= 0 {
		s.log.Warn().Str("category", name).Msg("category already exists")
		return fmt.Errorf("%w: %s", ErrExists, name)
	}

	s.categories = append(s.categories, model.Category{
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.Now(),
	})

	s.log.Info().Str("category", name).Msg("category created")

	return nil
}

// Delete removes the category called name, ignoring case.
func (s *Store) Delete(name string) error {
	idx := s.find(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	s.categories = slices.Delete(s.categories, idx, idx+1)
	s.log.Info().Str("category", name).Msg("category deleted")

	return nil
}

// Get returns the category called name, ignoring case.
func (s *Store) Get(name string) (model.Category, bool) {
	idx := s.find(name)
	if idx < 0 {
		return model.Category{}, false
	}

	return s.categories[idx], true
}

// List returns a copy of the categories in creation order.
func (s *Store) List() []model.Category {
	return slices.Clone(s.categories)
}

// Load replaces the categories with the content of the file. A missing,
// unreadable or malformed file gives an empty store; failures are logged.
func (s *Store) Load() {
	s.categories = nil

	var loaded []model.Category

	found, err := jsonfile.Load(s.path, &loaded)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("could not load categories, starting empty")
		return
	}

	if !found {
		s.log.Debug().Str("path", s.path).Msg("no categories file yet")
		return
	}

	for _, category := range loaded {
		if ValidateName(category.Name) != nil || s.find(category.Name) >= 0 {
			s.log.Warn().Str("category", category.Name).Msg("dropping invalid or duplicate category")
			continue
		}

		s.categories = append(s.categories, category)
	}

	s.log.Debug().Int("categories", len(s.categories)).Msg("categories loaded")
}

// Names returns the category names in creation order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.categories))
	for _, category := range s.categories {
		names = append(names, category.Name)
	}

	return names
}

// Rename changes the name of oldName to newName. Changing only the case of
// a name is allowed.
func (s *Store) Rename(oldName, newName string) error {
	err := ValidateName(newName)
	if err != nil {
		return err
	}

	newName = strings.TrimSpace(newName)

	idx := s.find(oldName)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, oldName)
	}

	if other := s.find(newName); other >= 0 && other != idx {
		return fmt.Errorf("%w: %s", ErrExists, newName)
	}

	s.categories[idx].Name = newName
	s.log.Info().Str("from", oldName).Str("to", newName).Msg("category renamed")

	return nil
}

// Save writes all categories to the file.
func (s *Store) Save() error {
	categories := s.categories
	if categories == nil {
		categories = []model.Category{}
	}

	err := jsonfile.Save(s.path, categories)
	if err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}

	return nil
}

func (s *Store) find(name string) int {
	name = strings.TrimSpace(name)

	return slices.IndexFunc(s.categories, func(c model.Category) bool {
		return strings.EqualFold(c.Name, name)
	})
}
