// Package copier copies classified files into per-category folders under an
// output root, renaming on collisions and recording each copy.
package copier

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/joe/tidy-files/internal/model"
	pkgerrors "github.com/joe/tidy-files/pkg/errors"
	"github.com/joe/tidy-files/pkg/fileops"
	"github.com/joe/tidy-files/pkg/filesystem"
)

// Recorder stores one record per successfully copied source file.
type Recorder interface {
	Add(source, destination, category string)
	Save() error
}

// Engine runs copy batches. It is not safe for concurrent use; run one batch
// at a time.
type Engine struct {
	ops      *fileops.FileOps
	recorder Recorder
	enricher pkgerrors.Enricher
	log      zerolog.Logger

	// SaveTracking saves the recorder after every batch that copied files.
	SaveTracking bool
}

// NewEngine returns an Engine writing through fsys. recorder may be nil.
func NewEngine(fsys filesystem.FileSystem, recorder Recorder, log zerolog.Logger) *Engine {
	return &Engine{
		ops:      fileops.NewFileOps(fsys),
		recorder: recorder,
		enricher: pkgerrors.NewEnricher(),
		log:      log.With().Str("component", "copier").Logger(),
	}
}

// Copy copies every classified record in files to
// outputRoot/<category>/<name>, in input order. When the name is taken the
// file is copied as <stem>_<n><ext> and counted as skipped; it still counts
// as copied. A failing file is recorded in the result and the batch goes on.
//
// Success is false only when there is nothing to copy or outputRoot cannot
// be created. progress may be nil.
func (e *Engine) Copy(files []*model.FileRecord, outputRoot string, progress ProgressFunc) model.ClassificationResult {
	result := model.ClassificationResult{Success: true}

	classified := make([]*model.FileRecord, 0, len(files))

	for _, file := range files {
		if file != nil && file.IsReadyToCopy() {
			classified = append(classified, file)
		}
	}

	if len(classified) == 0 {
		result.Success = false
		result.Message = "No classified files to copy."

		return result
	}

	if !e.ops.Exists(outputRoot) {
		err := e.ops.EnsureDir(outputRoot)
		if err != nil {
			e.log.Error().Err(err).Str("output", outputRoot).Msg("failed to create output folder")

			result.Success = false
			result.Message = fmt.Sprintf("Failed to create output folder: %v", err)
			result.Errors = append(result.Errors, result.Message)
			result.Failures = append(result.Failures, e.enricher.Enrich(err, outputRoot))

			return result
		}
	}

	for _, file := range classified {
		destination, err := e.copyOne(file, outputRoot, &result)
		if err != nil {
			e.log.Error().Err(err).Str("source", file.Path).Msg("failed to copy file")

			result.Errors = append(result.Errors, fmt.Sprintf("Error copying %s: %v", file.Name, err))
			result.Failures = append(result.Failures, e.enricher.Enrich(err, ""))

			continue
		}

		result.FilesCopied++
		result.TotalBytesCopied += file.Size
		result.Copied = append(result.Copied, file.Path)

		if progress != nil {
			progress(result.FilesCopied, len(classified), "Copied: "+file.Name)
		}

		if e.recorder != nil {
			e.recorder.Add(file.Path, destination, file.Category)
		}

		e.log.Info().Str("file", file.Name).Str("category", file.Category).Str("destination", destination).Msg("copied file")
	}

	e.saveTracking(&result)

	result.Message = fmt.Sprintf("Successfully copied %d files. Skipped %d files due to conflicts.",
		result.FilesCopied, result.FilesSkipped)

	return result
}

// copyOne copies a single record and returns its destination path. A
// collision bumps FilesSkipped even if the copy then fails.
func (e *Engine) copyOne(file *model.FileRecord, outputRoot string, result *model.ClassificationResult) (string, error) {
	categoryFolder := filepath.Join(outputRoot, file.Category)

	err := e.ops.EnsureDir(categoryFolder)
	if err != nil {
		return "", err //nolint:wrapcheck // EnsureDir names the folder
	}

	destination, renamed := e.ops.FreeName(categoryFolder, file.Name)
	if renamed {
		result.FilesSkipped++

		e.log.Debug().Str("file", file.Name).Str("destination", destination).Msg("name taken, renaming")
	}

	_, err = e.ops.CopyFile(file.Path, destination, fileops.Timestamps{
		Created:  file.CreatedAt,
		Modified: file.ModifiedAt,
	})
	if err != nil {
		return "", err //nolint:wrapcheck // CopyFile names both paths
	}

	return destination, nil
}

func (e *Engine) saveTracking(result *model.ClassificationResult) {
	if !e.SaveTracking || e.recorder == nil || result.FilesCopied == 0 {
		return
	}

	err := e.recorder.Save()
	if err != nil {
		e.log.Error().Err(err).Msg("failed to save tracking records")

		result.Errors = append(result.Errors, "Failed to save tracking records: "+err.Error())
		result.Failures = append(result.Failures, e.enricher.Enrich(err, ""))
	}
}
