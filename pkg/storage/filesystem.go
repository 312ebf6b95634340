package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned for references that escape the document root.
var ErrInvalidPath = errors.New("invalid document path")

// DocumentStore reads supporting documents previously uploaded under a base directory.
// Uploading itself is handled elsewhere; applications only carry the relative reference.
type DocumentStore struct {
	baseDir string
}

// NewDocumentStore ensures the base directory exists and returns a handle.
func NewDocumentStore(baseDir string) (*DocumentStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve documents directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}
	return &DocumentStore{baseDir: abs}, nil
}

// Exists reports whether the referenced document is present.
func (s *DocumentStore) Exists(relPath string) (bool, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat document: %w", err)
	}
	return !info.IsDir(), nil
}

// Open returns a read-only handle for the stored document.
func (s *DocumentStore) Open(relPath string) (*os.File, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return file, nil
}

func (s *DocumentStore) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(strings.TrimSpace(relPath))
	if cleaned == "." || cleaned == "" || filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.baseDir, cleaned), nil
}
