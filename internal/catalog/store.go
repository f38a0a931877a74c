package catalog

import (
	"context"
	"sync"
)

// Store persists the catalog in display order.
type Store interface {
	List(ctx context.Context) ([]Service, error)
	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*Service, error)
	// ReplaceAll swaps the whole catalog atomically.
	ReplaceAll(ctx context.Context, services []Service) error
	// Save updates an existing service in place, keeping its position.
	Save(ctx context.Context, svc Service) error
}

// MemoryStore keeps the catalog in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	services []Service
}

// NewMemoryStore creates an empty catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(context.Context) ([]Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Service, len(s.services))
	copy(out, s.services)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range s.services {
		if svc.ID == id {
			found := svc
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ReplaceAll(_ context.Context, services []Service) error {
	next := make([]Service, len(services))
	copy(next, services)
	s.mu.Lock()
	s.services = next
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Save(_ context.Context, svc Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services {
		if s.services[i].ID == svc.ID {
			s.services[i] = svc
			return nil
		}
	}
	return ErrNotFound
}
