package store

import (
	"fmt"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory snapshot store.
// It follows the same contract as FileStore and is used where nothing needs to survive a restart.
type MemoryStore struct {
	mu sync.RWMutex

	// key: snapshot kind, value: last saved document
	data map[Kind][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[Kind][]byte),
	}
}

// Save replaces the document for kind. The slice is copied.
func (s *MemoryStore) Save(kind Kind, data []byte) error {
	if err := checkKind(kind); err != nil {
		return err
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[kind] = buf
	return nil
}

// Load returns a copy of the document for kind.
func (s *MemoryStore) Load(kind Kind) ([]byte, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, kind)
	}
	if err := checkPayload(kind, data); err != nil {
		return nil, err
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}
