package memory

import (
	"context"
	"sync"

	domain "github.com/marchworks/stockroom/internal/domain/catalog"
)

// Store is an in-memory persistence collaborator, used by tests and by
// runs configured without an inventory file.
type Store struct {
	mu      sync.RWMutex
	records []domain.Record
	saves   int
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) ([]domain.Record, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneRecords(s.records), nil
}

func (s *Store) Save(ctx context.Context, records []domain.Record) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = cloneRecords(records)
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func cloneRecords(records []domain.Record) []domain.Record {
	if records == nil {
		return nil
	}
	return append([]domain.Record(nil), records...)
}
