package filesystem

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kr/fs"
)

// FileScanner is an iterator over the regular files in a directory tree.
// It provides a simple Next pattern for traversing directory contents.
type FileScanner interface {
	// Next advances to the next file and returns its info.
	// Returns (FileInfo{}, false) when done or on error.
	// Check Err() after Next() returns false to distinguish between end-of-scan and error.
	Next() (FileInfo, bool)

	// Err returns any error that occurred during scanning.
	// Should be checked after Next() returns false.
	Err() error
}

// FileInfo contains metadata about a regular file found by a scan.
type FileInfo struct {
	// Path is the full path of the file (root joined with RelativePath)
	Path string

	// RelativePath is the path relative to the scan root
	RelativePath string

	// Size is the file size in bytes
	Size int64

	// CreatedAt is the creation time, or ModTime where the platform has none
	CreatedAt time.Time

	// ModTime is the modification time
	ModTime time.Time
}

// SkipFunc reports whether the entry at relativePath should be left out.
// Returning true for a directory prunes the whole subtree.
type SkipFunc func(relativePath string, isDir bool) bool

// walkScanner implements FileScanner on top of a kr/fs walker.
type walkScanner struct {
	fsys FileSystem
	root string
	skip SkipFunc

	walkRoot string
	walker   *fs.Walker
	err      error
}

// NewScanner returns a scanner over the regular files below root. Directories,
// symbolic links and special files are never yielded. A root that is itself a
// link to a directory is followed, and yielded paths stay under root as given.
// The scan stops at the first walk error, which is reported by Err.
func NewScanner(fsys FileSystem, root string, skip SkipFunc) FileScanner {
	return &walkScanner{
		fsys: fsys,
		root: root,
		skip: skip,
	}
}

// Err returns any error that occurred during scanning.
func (s *walkScanner) Err() error {
	return s.err
}

// Next advances to the next regular file.
func (s *walkScanner) Next() (FileInfo, bool) {
	if s.err != nil {
		return FileInfo{}, false
	}

	// Start walking on first call
	if s.walker == nil {
		resolved, err := s.fsys.EvalSymlinks(s.root)
		if err != nil {
			s.err = fmt.Errorf("failed to resolve scan root %s: %w", s.root, err)
			return FileInfo{}, false
		}

		s.walkRoot = resolved
		s.walker = s.fsys.Walk(resolved)
	}

	for s.walker.Step() {
		if err := s.walker.Err(); err != nil {
			s.err = fmt.Errorf("walk error at %s: %w", s.walker.Path(), err)
			return FileInfo{}, false
		}

		info := s.walker.Stat()

		relPath, err := filepath.Rel(s.walkRoot, s.walker.Path())
		if err != nil {
			s.err = fmt.Errorf("failed to get relative path for %s: %w", s.walker.Path(), err)
			return FileInfo{}, false
		}

		// Skip the root directory itself
		if relPath == "." {
			continue
		}

		if s.skip != nil && s.skip(relPath, info.IsDir()) {
			if info.IsDir() {
				s.walker.SkipDir()
			}

			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		return FileInfo{
			Path:         filepath.Join(s.root, relPath),
			RelativePath: relPath,
			Size:         info.Size(),
			CreatedAt:    CreationTime(info),
			ModTime:      info.ModTime(),
		}, true
	}

	return FileInfo{}, false
}
