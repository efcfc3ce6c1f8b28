package blob

import (
	"context"
	"sync"
)

// FakeStore is an in-memory Store for tests and development. URLs take the
// same shape as the S3 store's path-style URLs.
type FakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewFakeStore() *FakeStore {
	return &FakeStore{objects: make(map[string][]byte)}
}

func (s *FakeStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *FakeStore) URL(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[key]; !ok {
		return "", &StorageError{Op: "url", Key: key, Err: ErrNotFound}
	}
	return "https://blob.fake/images/" + key, nil
}

func (s *FakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

// Get retrieves a blob's content, reporting whether the key exists.
func (s *FakeStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.objects[key]
	return data, ok
}

// Len reports the number of stored blobs.
func (s *FakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}
