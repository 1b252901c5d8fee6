// Package local stores scans as files in a local directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ImageStore = (*Store)(nil)

// Store is a filesystem-backed driven.ImageStore.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
// If dir is empty, defaults to ~/.markscan/images.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".markscan", "images")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving image directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put writes data to a new file called name and returns its path.
func (s *Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: invalid image name %q", domain.ErrInvalidInput, name)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("image %s: %w", name, domain.ErrAlreadyExists)
		}
		return "", fmt.Errorf("creating image: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing image: %w", err)
	}
	return path, nil
}

// Get reads the file at path.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.contains(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return data, nil
}

// Delete removes the file at path. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// contains rejects paths outside the store directory.
func (s *Store) contains(path string) error {
	rel, err := filepath.Rel(s.dir, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: path %q is outside the image directory", domain.ErrInvalidInput, path)
	}
	return nil
}
