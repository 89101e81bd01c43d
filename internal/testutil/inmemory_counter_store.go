package testutil

import (
	"context"
	"sync"

	"github.com/chainvoice/chainvoice/internal/domain/counter"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
)

// InMemoryCounterStore is an in-memory implementation of counter.Repository.
// Row locking has no in-memory equivalent; the mock postgres client
// serializes whole transactions instead, which gives the same isolation.
type InMemoryCounterStore struct {
	mu       sync.RWMutex
	counters map[string]*counter.Counter
}

func NewInMemoryCounterStore() *InMemoryCounterStore {
	return &InMemoryCounterStore{
		counters: make(map[string]*counter.Counter),
	}
}

func counterKey(companyID string, key types.CounterKey) string {
	return companyID + "/" + string(key)
}

func (s *InMemoryCounterStore) Get(ctx context.Context, companyID string, key types.CounterKey) (*counter.Counter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.counters[counterKey(companyID, key)]
	if !exists {
		return nil, ierr.NewError("counter not found").
			WithHintf("No counter exists yet for %s", key).
			Mark(ierr.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryCounterStore) GetForUpdate(ctx context.Context, companyID string, key types.CounterKey) (*counter.Counter, error) {
	return s.Get(ctx, companyID, key)
}

func (s *InMemoryCounterStore) Upsert(ctx context.Context, c *counter.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *c
	s.counters[counterKey(c.CompanyID, c.Key)] = &cp
	return nil
}

func (s *InMemoryCounterStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]*counter.Counter)
}
