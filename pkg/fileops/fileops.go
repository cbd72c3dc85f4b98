// Package fileops provides file operation utilities for copying files into
// category folders without clobbering what is already there.
package fileops

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joe/tidy-files/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (64KB)
	BufferSize = 64 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
)

// Timestamps carries the times to stamp onto a copied file.
type Timestamps struct {
	Created  time.Time
	Modified time.Time
}

// FileOps provides file operations with dependency injection for filesystem access.
// This allows for testing without actual filesystem I/O.
type FileOps struct {
	FS filesystem.FileSystem
}

// NewFileOps creates a new FileOps instance with the given filesystem.
func NewFileOps(fs filesystem.FileSystem) *FileOps {
	return &FileOps{FS: fs}
}

// NewRealFileOps creates a new FileOps instance using the real filesystem.
func NewRealFileOps() *FileOps {
	return &FileOps{FS: filesystem.NewRealFileSystem()}
}

// CopyFile copies src to dst, replacing whatever is at dst, then stamps the
// given timestamps onto dst. The parent of dst must exist. A partially written
// dst is removed when the copy fails.
func (fo *FileOps) CopyFile(src, dst string, stamps Timestamps) (int64, error) {
	sourceFile, err := fo.FS.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	destFile, err := fo.FS.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	// Track whether copy completed successfully
	copyCompleted := false

	defer func() {
		if !copyCompleted {
			_ = destFile.Close()
			_ = fo.FS.Remove(dst)
		}
	}()

	written, err := fo.copyLoop(sourceFile, destFile)
	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	copyCompleted = true

	// Close the file before setting times
	// This is important for network filesystems like SMB
	err = destFile.Close()
	if err != nil {
		_ = fo.FS.Remove(dst)
		return written, fmt.Errorf("failed to close destination file %s: %w", dst, err)
	}

	err = fo.FS.Chtimes(dst, stamps.Modified, stamps.Modified)
	if err != nil {
		return written, fmt.Errorf("failed to preserve modification time for %s: %w", dst, err)
	}

	err = fo.FS.SetCreationTime(dst, stamps.Created)
	if err != nil {
		return written, fmt.Errorf("failed to preserve creation time for %s: %w", dst, err)
	}

	return written, nil
}

// EnsureDir creates dir and any missing parents.
func (fo *FileOps) EnsureDir(dir string) error {
	err := fo.FS.MkdirAll(dir, DefaultDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}

// Exists reports whether anything is present at path. A symbolic link counts
// even when its target is missing.
func (fo *FileOps) Exists(path string) bool {
	_, err := fo.FS.Lstat(path)
	return err == nil
}

// FreeName returns the path for name inside dir. When dir/name is taken it
// tries <stem>_1<ext>, <stem>_2<ext>, ... and returns the first free one;
// renamed reports whether the original name was taken.
func (fo *FileOps) FreeName(dir, name string) (path string, renamed bool) {
	path = filepath.Join(dir, name)
	if !fo.Exists(path) {
		return path, false
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for counter := 1; ; counter++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		if !fo.Exists(path) {
			return path, true
		}
	}
}

// PreviewLines returns up to lineCount lines from the start of a text file,
// joined with newlines.
func (fo *FileOps) PreviewLines(path string, lineCount int) (string, error) {
	file, err := fo.FS.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, BufferSize), BufferSize*16)

	lines := make([]string, 0, lineCount)
	for len(lines) < lineCount && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	err = scanner.Err()
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return strings.Join(lines, "\n"), nil
}

// Stat returns file information.
func (fo *FileOps) Stat(path string) (os.FileInfo, error) {
	info, err := fo.FS.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}

// copyLoop performs the byte copy between two open files.
func (fo *FileOps) copyLoop(sourceFile, destFile filesystem.File) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		if nr > 0 {
			nw, werr := destFile.Write(buf[0:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			if werr != nil {
				return written, fmt.Errorf("failed to write to destination: %w", werr)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}

	return written, nil
}
