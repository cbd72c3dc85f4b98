// Package model holds the records shared by discovery, classification,
// copying and the persisted stores.
package model

import (
	"fmt"
	"time"

	pkgerrors "github.com/joe/tidy-files/pkg/errors"
	"github.com/joe/tidy-files/pkg/formatters"
)

// FileRecord is one regular file found by discovery.
type FileRecord struct {
	Path       string
	Name       string
	Size       int64
	CreatedAt  time.Time
	ModifiedAt time.Time
	Category   string
	Classified bool
}

// FormattedSize renders Size for listings.
func (f FileRecord) FormattedSize() string {
	return formatters.FormatSize(f.Size)
}

// IsReadyToCopy reports whether the record has been classified into a category.
func (f FileRecord) IsReadyToCopy() bool {
	return f.Classified && f.Category != ""
}

func (f FileRecord) String() string {
	category := f.Category
	if category == "" {
		category = "Unassigned"
	}

	return fmt.Sprintf("%s (%s) - Category: %s", f.Name, f.FormattedSize(), category)
}

// CopyRecord marks a source file as already copied. Field names are the
// on-disk JSON keys of the tracking file.
type CopyRecord struct {
	SourceFilePath      string
	DestinationFilePath string
	Category            string
	CopiedAt            time.Time
	// FileHash is reserved for content deduplication and is never computed.
	FileHash *string
}

// ClassificationResult is the outcome of one copy batch.
type ClassificationResult struct {
	Success          bool
	Message          string
	FilesCopied      int
	FilesSkipped     int
	TotalBytesCopied int64
	Errors           []string

	// Copied lists the source paths copied by this batch, in order.
	Copied []string `json:"-"`
	// Failures carries one actionable error per failed file.
	Failures []pkgerrors.ActionableError `json:"-"`
}

// Category is a user-defined destination folder name.
type Category struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

func (c Category) String() string {
	if c.Description == "" {
		return c.Name
	}

	return c.Name + " - " + c.Description
}

// AppConfig holds the folders the user picked in the menu.
type AppConfig struct {
	SourceFolders []string
	OutputFolder  string
}
