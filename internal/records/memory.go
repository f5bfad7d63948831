package records

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store for tests and database-less development runs.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]Record)}
}

// Get returns the stored record for account, or DefaultRecord() when absent.
func (s *MemStore) Get(_ context.Context, account string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[account]
	if !ok {
		return DefaultRecord(), nil
	}
	return rec, nil
}

// Put stores rec under account, replacing any previous document.
func (s *MemStore) Put(_ context.Context, account string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[account] = rec
	return nil
}
