package tournament

import (
	"context"
	"sync"
)

// Storage is the persistence port used by all systems. State is stored as
// opaque documents addressed by collection and key; the tournament core
// serializes whole documents and replaces them on write, it never issues
// partial updates.
type Storage interface {
	// Read returns the document and true when it exists, or nil and false
	// when the key is absent. Absence is not an error.
	Read(ctx context.Context, collection, key string) ([]byte, bool, error)

	// Write stores the document, replacing any previous value.
	Write(ctx context.Context, collection, key string, value []byte) error

	// Delete removes the document. Deleting an absent key is a no-op.
	Delete(ctx context.Context, collection, key string) error

	// List returns every document in a collection keyed by document key.
	List(ctx context.Context, collection string) (map[string][]byte, error)
}

// MemoryStorage is an in-process Storage implementation. It is the default
// backend when no other Storage is supplied and the one tests run against.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string][]byte)}
}

func (s *MemoryStorage) Read(_ context.Context, collection, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.data[collection]
	if !ok {
		return nil, false, nil
	}
	value, ok := coll[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (s *MemoryStorage) Write(_ context.Context, collection, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.data[collection]
	if !ok {
		coll = make(map[string][]byte)
		s.data[collection] = coll
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	coll[key] = stored
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if coll, ok := s.data[collection]; ok {
		delete(coll, key)
		if len(coll) == 0 {
			delete(s.data, collection)
		}
	}
	return nil
}

func (s *MemoryStorage) List(_ context.Context, collection string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte)
	for key, value := range s.data[collection] {
		copied := make([]byte, len(value))
		copy(copied, value)
		out[key] = copied
	}
	return out, nil
}
