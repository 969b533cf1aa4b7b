package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is a BlobStore held in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	baseURL string
	suffix  func() string
}

var _ BlobStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store whose URLs start with baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		blobs:   make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
		suffix:  randomSuffix,
	}
}

func (s *MemoryStore) exists(_ context.Context, key string) (bool, error) {
	_, ok := s.blobs[key]
	return ok, nil
}

// Save implements BlobStore.Save.
func (s *MemoryStore) Save(ctx context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := availableKey(ctx, key, s.exists, s.suffix)
	if err != nil {
		return "", err
	}
	s.blobs[key] = append([]byte(nil), data...)
	return key, nil
}

// Delete implements BlobStore.Delete.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// URL implements BlobStore.URL.
func (s *MemoryStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// Get returns the blob stored under key.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
