package filestorage

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/google/uuid"
)

// InMemStorage implements Storage with an in-memory map, for tests
type InMemStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewInMemStorage creates a new in-memory storage
func NewInMemStorage() *InMemStorage {
	return &InMemStorage{objects: make(map[string][]byte)}
}

func (s *InMemStorage) Put(ctx context.Context, folder, filename, contentType string, content io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	key := folder + "/" + uuid.New().String() + path.Ext(filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return key, nil
}

func (s *InMemStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Len returns the number of stored objects
func (s *InMemStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
