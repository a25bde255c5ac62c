package testutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"bcl-go/internal/bcl"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Size        int64
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing.
// Stat and ReadDir failures can be injected per path.
type MockFilesystemManager struct {
	files       map[string]*MockFile
	statErrs    map[string]error
	readDirErrs map[string]error
	now         time.Time
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:       make(map[string]*MockFile),
		statErrs:    make(map[string]error),
		readDirErrs: make(map[string]error),
		now:         time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

// AddFile adds a file of the given size. Parent directories are created.
func (m *MockFilesystemManager) AddFile(path string, size int64) {
	m.AddFileAt(path, size, m.now)
}

// AddFileAt adds a file of the given size and modification time.
func (m *MockFilesystemManager) AddFileAt(path string, size int64, modTime time.Time) {
	path = filepath.Clean(path)
	m.addParents(path)
	m.files[path] = &MockFile{
		Size:        size,
		Permissions: 0644,
		ModTime:     modTime,
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	path = filepath.Clean(path)
	m.addParents(path)
	m.files[path] = &MockFile{
		Permissions: 0755,
		ModTime:     m.now,
		IsDirectory: true,
	}
}

// FailStat makes Stat of path return err.
func (m *MockFilesystemManager) FailStat(path string, err error) {
	m.statErrs[filepath.Clean(path)] = err
}

// FailReadDir makes ReadDir of dir return err.
func (m *MockFilesystemManager) FailReadDir(dir string, err error) {
	m.readDirErrs[filepath.Clean(dir)] = err
}

func (m *MockFilesystemManager) addParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{Permissions: 0755, ModTime: m.now, IsDirectory: true}
		}
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	path = filepath.Clean(path)
	if err, ok := m.statErrs[path]; ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	file, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return newMockFileInfo(filepath.Base(path), file), nil
}

func (m *MockFilesystemManager) ReadDir(dir string) ([]fs.FileInfo, error) {
	dir = filepath.Clean(dir)
	if err, ok := m.readDirErrs[dir]; ok {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: err}
	}
	d, ok := m.files[dir]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrNotExist}
	}
	if !d.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var infos []fs.FileInfo
	for path, file := range m.files {
		if path == dir || filepath.Dir(path) != dir {
			continue
		}
		infos = append(infos, newMockFileInfo(filepath.Base(path), file))
	}
	slices.SortFunc(infos, func(a, b fs.FileInfo) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return infos, nil
}

func newMockFileInfo(name string, file *MockFile) *mockFileInfo {
	mode := file.Permissions
	if file.IsDirectory {
		mode |= fs.ModeDir
	}
	return &mockFileInfo{
		name:    name,
		size:    file.Size,
		mode:    mode,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ bcl.FilesystemManager = (*MockFilesystemManager)(nil)
