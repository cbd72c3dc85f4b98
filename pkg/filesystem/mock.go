package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kr/fs"
)

// Op names a MockFileSystem operation for failure injection.
type Op string

// Operations that can be made to fail with FailOn.
const (
	OpChtimes Op = "chtimes"
	OpCreate  Op = "create"
	OpMkdir   Op = "mkdir"
	OpOpen    Op = "open"
	OpReadDir Op = "readdir"
	OpRemove  Op = "remove"
	OpStat    Op = "stat"
	OpWrite   Op = "write"
)

// MockFileSystem is an in-memory filesystem implementation for testing.
type MockFileSystem struct {
	mu       sync.RWMutex
	files    map[string]*mockFile
	failures map[string]error
}

// mockFile represents a file in the mock filesystem.
type mockFile struct {
	path      string
	data      []byte
	modTime   time.Time
	birthTime time.Time
	isDir     bool
	perm      os.FileMode
}

// mockFileInfo implements os.FileInfo for mock files.
type mockFileInfo struct {
	name      string
	size      int64
	modTime   time.Time
	birthTime time.Time
	isDir     bool
	perm      os.FileMode
}

func (fi *mockFileInfo) Name() string         { return fi.name }
func (fi *mockFileInfo) Size() int64          { return fi.size }
func (fi *mockFileInfo) ModTime() time.Time   { return fi.modTime }
func (fi *mockFileInfo) BirthTime() time.Time { return fi.birthTime }
func (fi *mockFileInfo) IsDir() bool          { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}     { return nil }

func (fi *mockFileInfo) Mode() os.FileMode {
	if fi.isDir {
		return fi.perm | os.ModeDir
	}

	return fi.perm
}

// mockFileHandle implements the File interface for reading/writing.
type mockFileHandle struct {
	fs     *MockFileSystem
	path   string
	reader *bytes.Reader
	writer *bytes.Buffer
	closed bool
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if f.reader == nil {
		return 0, io.EOF
	}
	return f.reader.Read(p)
}

func (f *mockFileHandle) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if err := f.fs.failure(OpWrite, f.path); err != nil {
		return 0, err
	}
	if f.writer == nil {
		f.writer = &bytes.Buffer{}
	}
	return f.writer.Write(p)
}

func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true

	// Flush written data into the filesystem
	if f.writer != nil {
		f.fs.mu.Lock()
		defer f.fs.mu.Unlock()

		if file, exists := f.fs.files[f.path]; exists {
			file.data = f.writer.Bytes()
		}
	}

	return nil
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}

	f.fs.mu.RLock()
	defer f.fs.mu.RUnlock()

	file, exists := f.fs.files[f.path]
	if !exists {
		return nil, os.ErrNotExist
	}

	return file.info(), nil
}

func (m *mockFile) info() *mockFileInfo {
	return &mockFileInfo{
		name:      filepath.Base(m.path),
		size:      int64(len(m.data)),
		modTime:   m.modTime,
		birthTime: m.birthTime,
		isDir:     m.isDir,
		perm:      m.perm,
	}
}

// NewMockFileSystem creates a new in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:    make(map[string]*mockFile),
		failures: make(map[string]error),
	}
}

// FailOn makes every subsequent op on path return err.
func (mfs *MockFileSystem) FailOn(op Op, path string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.failures[failureKey(op, path)] = err
}

func failureKey(op Op, path string) string {
	return string(op) + ":" + filepath.Clean(path)
}

func (mfs *MockFileSystem) failure(op Op, path string) error {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.failureLocked(op, path)
}

func (mfs *MockFileSystem) failureLocked(op Op, path string) error {
	if err, ok := mfs.failures[failureKey(op, path)]; ok {
		return &os.PathError{Op: string(op), Path: path, Err: err}
	}

	return nil
}

// Walk returns a kr/fs walker over the in-memory tree.
func (mfs *MockFileSystem) Walk(root string) *fs.Walker {
	return fs.WalkFS(root, mfs)
}

// ReadDir lists the direct children of dirname sorted by name (kr/fs.FileSystem).
func (mfs *MockFileSystem) ReadDir(dirname string) ([]os.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	if err := mfs.failureLocked(OpReadDir, dirname); err != nil {
		return nil, err
	}

	dir, exists := mfs.files[filepath.Clean(dirname)]
	if !exists {
		return nil, &os.PathError{Op: "readdir", Path: dirname, Err: os.ErrNotExist}
	}
	if !dir.isDir {
		return nil, &os.PathError{Op: "readdir", Path: dirname, Err: fmt.Errorf("not a directory")}
	}

	var infos []os.FileInfo
	for path, file := range mfs.files {
		if filepath.Dir(path) == dir.path && path != dir.path {
			infos = append(infos, file.info())
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	return infos, nil
}

// Lstat returns file information without following links (kr/fs.FileSystem).
// The mock holds no links, so it matches Stat.
func (mfs *MockFileSystem) Lstat(name string) (os.FileInfo, error) {
	return mfs.Stat(name)
}

// EvalSymlinks returns the cleaned path of an existing entry.
func (mfs *MockFileSystem) EvalSymlinks(path string) (string, error) {
	_, err := mfs.Stat(path)
	if err != nil {
		return "", err
	}

	return filepath.Clean(path), nil
}

// Join joins path elements (kr/fs.FileSystem).
func (mfs *MockFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Stat returns file information.
func (mfs *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	if err := mfs.failureLocked(OpStat, path); err != nil {
		return nil, err
	}

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, &os.PathError{Op: "stat", Path: path, Err: os.ErrNotExist}
	}

	return file.info(), nil
}

// Remove removes a file or empty directory.
func (mfs *MockFileSystem) Remove(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if err := mfs.failureLocked(OpRemove, path); err != nil {
		return err
	}

	path = filepath.Clean(path)

	file, exists := mfs.files[path]
	if !exists {
		return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
	}

	// If it's a directory, check if it's empty
	if file.isDir {
		for p := range mfs.files {
			if strings.HasPrefix(p, path+string(filepath.Separator)) {
				return fmt.Errorf("remove %s: directory not empty", path)
			}
		}
	}

	delete(mfs.files, path)
	return nil
}

// Chtimes changes the access and modification times of a file.
func (mfs *MockFileSystem) Chtimes(path string, _, mtime time.Time) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if err := mfs.failureLocked(OpChtimes, path); err != nil {
		return err
	}

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return &os.PathError{Op: "chtimes", Path: path, Err: os.ErrNotExist}
	}

	file.modTime = mtime
	return nil
}

// SetCreationTime records the creation time of a file.
func (mfs *MockFileSystem) SetCreationTime(path string, ctime time.Time) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return &os.PathError{Op: "setctime", Path: path, Err: os.ErrNotExist}
	}

	file.birthTime = ctime
	return nil
}

// MkdirAll creates a directory and all necessary parents.
func (mfs *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	return mfs.mkdirAllLocked(filepath.Clean(path), perm)
}

// mkdirAllLocked is the internal implementation that assumes the lock is held.
func (mfs *MockFileSystem) mkdirAllLocked(path string, perm os.FileMode) error {
	if path == "." || path == string(filepath.Separator) {
		return nil
	}

	if err := mfs.failureLocked(OpMkdir, path); err != nil {
		return err
	}

	// Create parent directories first
	if err := mfs.mkdirAllLocked(filepath.Dir(path), perm); err != nil {
		return err
	}

	existing, exists := mfs.files[path]
	if exists && !existing.isDir {
		return &os.PathError{Op: "mkdir", Path: path, Err: fmt.Errorf("not a directory")}
	}

	if !exists {
		now := time.Now()
		mfs.files[path] = &mockFile{
			path:      path,
			modTime:   now,
			birthTime: now,
			isDir:     true,
			perm:      perm,
		}
	}

	return nil
}

// Open opens a file for reading.
func (mfs *MockFileSystem) Open(path string) (File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	if err := mfs.failureLocked(OpOpen, path); err != nil {
		return nil, err
	}

	path = filepath.Clean(path)

	file, exists := mfs.files[path]
	if !exists {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	if file.isDir {
		return nil, &os.PathError{Op: "open", Path: path, Err: fmt.Errorf("is a directory")}
	}

	return &mockFileHandle{
		fs:     mfs,
		path:   path,
		reader: bytes.NewReader(file.data),
	}, nil
}

// Create creates a file for writing, truncating any existing file.
// Like os.Create, the parent directory must already exist.
func (mfs *MockFileSystem) Create(path string) (File, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	if err := mfs.failureLocked(OpCreate, path); err != nil {
		return nil, err
	}

	path = filepath.Clean(path)

	if parent, ok := mfs.files[filepath.Dir(path)]; !ok || !parent.isDir {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	if existing, ok := mfs.files[path]; ok && existing.isDir {
		return nil, &os.PathError{Op: "open", Path: path, Err: fmt.Errorf("is a directory")}
	}

	now := time.Now()
	mfs.files[path] = &mockFile{
		path:      path,
		data:      []byte{},
		modTime:   now,
		birthTime: now,
		perm:      0o644,
	}

	return &mockFileHandle{
		fs:     mfs,
		path:   path,
		writer: &bytes.Buffer{},
	}, nil
}

// Helper methods for testing

// AddFile adds a file with the given content; both timestamps are set to modTime.
func (mfs *MockFileSystem) AddFile(path string, content []byte, modTime time.Time) {
	mfs.AddFileWithTimes(path, content, modTime, modTime)
}

// AddFileWithTimes adds a file with distinct creation and modification times.
func (mfs *MockFileSystem) AddFileWithTimes(path string, content []byte, birthTime, modTime time.Time) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	path = filepath.Clean(path)
	_ = mfs.mkdirAllLocked(filepath.Dir(path), 0o755)

	mfs.files[path] = &mockFile{
		path:      path,
		data:      append([]byte(nil), content...),
		modTime:   modTime,
		birthTime: birthTime,
		perm:      0o644,
	}
}

// AddDir adds a directory (and its parents) to the mock filesystem.
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	_ = mfs.mkdirAllLocked(filepath.Clean(path), 0o755)
}

// GetFile retrieves a file's content and timestamps from the mock filesystem.
func (mfs *MockFileSystem) GetFile(path string) ([]byte, time.Time, time.Time, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, time.Time{}, time.Time{}, os.ErrNotExist
	}

	if file.isDir {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("is a directory")
	}

	return append([]byte(nil), file.data...), file.birthTime, file.modTime, nil
}

// Exists checks if a path exists in the mock filesystem.
func (mfs *MockFileSystem) Exists(path string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, exists := mfs.files[filepath.Clean(path)]
	return exists
}

// ListFiles returns all paths in the mock filesystem, sorted.
func (mfs *MockFileSystem) ListFiles() []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	paths := make([]string, 0, len(mfs.files))
	for p := range mfs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
