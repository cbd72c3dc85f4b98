// Package filesystem provides an abstraction layer for filesystem operations
// to enable dependency injection and testing without actual filesystem I/O.
package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/djherbis/times"
	"github.com/kr/fs"
)

// File is an interface that abstracts file operations.
// This allows us to work with both real files and mock files.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Stat() (os.FileInfo, error)
}

// FileSystem is an interface that abstracts filesystem operations.
// This allows for dependency injection and testing with mock implementations.
type FileSystem interface {
	// Walk returns a kr/fs walker rooted at path. Entries are reported with
	// Lstat semantics, so symbolic links are never followed.
	Walk(root string) *fs.Walker

	Open(path string) (File, error)
	Create(path string) (File, error)
	MkdirAll(path string, perm os.FileMode) error
	Chtimes(path string, atime, mtime time.Time) error
	// SetCreationTime sets the creation (birth) time where the platform
	// allows it and is a no-op elsewhere.
	SetCreationTime(path string, ctime time.Time) error
	Remove(path string) error
	Stat(path string) (os.FileInfo, error)
	// Lstat is Stat without following a final symbolic link, so a dangling
	// link still reports an entry.
	Lstat(path string) (os.FileInfo, error)
	// EvalSymlinks returns path with every symbolic link in it resolved.
	EvalSymlinks(path string) (string, error)
}

// birthTimer is implemented by FileInfo values that carry their own creation time.
type birthTimer interface {
	BirthTime() time.Time
}

// CreationTime returns the creation time recorded for info. When the
// platform does not track one, the modification time is returned instead.
func CreationTime(info os.FileInfo) time.Time {
	if bt, ok := info.(birthTimer); ok {
		return bt.BirthTime()
	}

	if info.Sys() == nil {
		return info.ModTime()
	}

	spec := times.Get(info)
	if spec.HasBirthTime() {
		return spec.BirthTime()
	}

	return info.ModTime()
}

// RealFileSystem implements FileSystem using actual os/filepath functions.
type RealFileSystem struct{}

// NewRealFileSystem creates a new RealFileSystem instance.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// Chtimes changes the access and modification times of a file.
func (rfs *RealFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	err := os.Chtimes(path, atime, mtime)
	if err != nil {
		return fmt.Errorf("failed to change times for %s: %w", path, err)
	}

	return nil
}

// EvalSymlinks resolves every symbolic link in path.
func (rfs *RealFileSystem) EvalSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return resolved, nil
}

// Create creates a file for writing, truncating any existing file.
func (rfs *RealFileSystem) Create(path string) (File, error) {
	file, err := os.Create(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return file, nil
}

// Lstat returns file information without following a final symbolic link.
func (rfs *RealFileSystem) Lstat(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat %s: %w", path, err)
	}

	return info, nil
}

// MkdirAll creates a directory and all necessary parents.
func (rfs *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	err := os.MkdirAll(path, perm)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// Open opens a file for reading.
func (rfs *RealFileSystem) Open(path string) (File, error) {
	file, err := os.Open(path) // #nosec G304 - file path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// Remove removes a file or empty directory.
func (rfs *RealFileSystem) Remove(path string) error {
	err := os.Remove(path)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}

	return nil
}

// SetCreationTime sets the file creation time on platforms that support it.
func (rfs *RealFileSystem) SetCreationTime(path string, ctime time.Time) error {
	err := setBirthTime(path, ctime)
	if err != nil {
		return fmt.Errorf("failed to set creation time for %s: %w", path, err)
	}

	return nil
}

// Stat returns file information.
func (rfs *RealFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}

// Walk returns a walker over the real directory tree rooted at root.
func (rfs *RealFileSystem) Walk(root string) *fs.Walker {
	return fs.Walk(root)
}
