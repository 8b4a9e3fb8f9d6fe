package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"libredit/internal/domain"
)

// Store keeps book format files under a library root directory
type Store struct {
	root string
}

// NewStore creates a new filesystem store rooted at root
func NewStore(root string) *Store {
	return &Store{root: ExpandHome(root)}
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// Root returns the absolute library root
func (s *Store) Root() string {
	return s.root
}

// Path resolves a path relative to the root
func (s *Store) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// Put copies src into relDir/name, replacing any existing file. The copy is
// written next to the target and renamed into place, so readers never see
// a partial file.
func (s *Store) Put(relDir, name, src string) (int64, error) {
	dir := s.Path(relDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create book directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	n, err := copyFrom(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return 0, fmt.Errorf("failed to store %s: %w", name, err)
	}
	return n, nil
}

// WorkingCopy copies a stored file to a new temporary file with the
// format's extension and returns its path. Every call returns a distinct
// path.
func (s *Store) WorkingCopy(rel string, format domain.Format) (string, error) {
	tmp, err := os.CreateTemp("", "libredit-*."+format.Ext())
	if err != nil {
		return "", fmt.Errorf("failed to create working file: %w", err)
	}
	_, err = copyFrom(tmp, s.Path(rel))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to copy %s: %w", rel, err)
	}
	return tmp.Name(), nil
}

// RemoveDir deletes a book directory and everything in it
func (s *Store) RemoveDir(relDir string) error {
	return os.RemoveAll(s.Path(relDir))
}

func copyFrom(dst io.Writer, src string) (int64, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(dst, f)
}
