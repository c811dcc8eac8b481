package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem abstracts the read-side filesystem operations for testability.
type FileSystem interface {
	// Stat returns file info for the given path.
	Stat(path string) (fs.FileInfo, error)
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Glob returns matches for the given pattern.
	Glob(pattern string) ([]string, error)
}

// OSFS implements FileSystem using the standard library.
type OSFS struct{}

// NewOSFS creates a new OSFS instance.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Stat returns file info for the given path.
func (o *OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the entire file at path.
func (o *OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- manifest paths come from the workspace declaration
	return os.ReadFile(path)
}

// Glob returns matches for the given pattern.
func (o *OSFS) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// MapFSAdapter adapts an fs.FS (typically fstest.MapFS) to FileSystem, mounted at Root.
type MapFSAdapter struct {
	FS   fs.FS
	Root string
}

// NewMapFSAdapter creates a new MapFSAdapter with the given root path and filesystem.
func NewMapFSAdapter(root string, fsys fs.FS) *MapFSAdapter {
	return &MapFSAdapter{
		FS:   fsys,
		Root: root,
	}
}

// Stat returns file info for the given path.
func (m *MapFSAdapter) Stat(path string) (fs.FileInfo, error) {
	return fs.Stat(m.FS, m.toRelPath(path))
}

// ReadFile reads the entire file at path.
func (m *MapFSAdapter) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.FS, m.toRelPath(path))
}

// Glob returns matches for the given pattern, mounted at Root.
func (m *MapFSAdapter) Glob(pattern string) ([]string, error) {
	matches, err := fs.Glob(m.FS, m.toRelPath(pattern))
	if err != nil {
		return nil, err
	}
	for i, match := range matches {
		matches[i] = filepath.Join(m.Root, match)
	}
	return matches, nil
}

// toRelPath converts a path under Root to a path within the filesystem.
// Paths outside Root are returned unchanged, which makes fs operations fail
// with "file not found".
func (m *MapFSAdapter) toRelPath(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}

	if m.Root != "/" && path != m.Root && !strings.HasPrefix(path, m.Root+string(filepath.Separator)) {
		return path
	}

	rel := strings.TrimPrefix(path, m.Root)
	rel = strings.TrimPrefix(rel, string(filepath.Separator))
	if rel == "" {
		return "."
	}
	return filepath.ToSlash(rel)
}
