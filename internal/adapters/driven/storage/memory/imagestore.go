package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// Ensure ImageStore implements the interface.
var _ driven.ImageStore = (*ImageStore)(nil)

// ImageStore is an in-memory implementation of driven.ImageStore.
type ImageStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewImageStore creates a new in-memory image store.
func NewImageStore() *ImageStore {
	return &ImageStore{
		objects: make(map[string][]byte),
	}
}

// Put stores data and returns its path.
func (s *ImageStore) Put(_ context.Context, name string, data []byte) (string, error) {
	path := "memory://" + name
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[path]; exists {
		return "", domain.ErrAlreadyExists
	}
	s.objects[path] = bytes.Clone(data)
	return path, nil
}

// Get returns the bytes stored at path.
func (s *ImageStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bytes.Clone(data), nil
}

// Delete removes the object at path.
func (s *ImageStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Len returns the number of stored objects.
func (s *ImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
