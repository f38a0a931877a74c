package integrations

import (
	"context"
	"sync"
)

// Store persists integration records. Implementations guarantee single-record
// atomicity only; the Registry serializes writers per provider.
type Store interface {
	// Get returns ErrNotFound when the provider has no record.
	Get(ctx context.Context, provider Provider) (*Record, error)
	Save(ctx context.Context, rec *Record) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Provider]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Provider]*Record)}
}

func (s *MemoryStore) Get(_ context.Context, provider Provider) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[provider]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.records[rec.Provider] = rec.Clone()
	s.mu.Unlock()
	return nil
}
