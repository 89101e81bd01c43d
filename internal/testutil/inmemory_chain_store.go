package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainvoice/chainvoice/internal/domain/chain"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
)

// InMemoryChainStore is an in-memory implementation of chain.Repository.
// Like the real table it rejects duplicate positions with a retryable
// conflict and offers no update or delete. Tests that need to corrupt a chain
// use the Tamper helpers.
type InMemoryChainStore struct {
	mu      sync.RWMutex
	entries map[string]*chain.Entry
}

func NewInMemoryChainStore() *InMemoryChainStore {
	return &InMemoryChainStore{
		entries: make(map[string]*chain.Entry),
	}
}

func chainPos(companyID string, key types.CounterKey, docNumber int64) string {
	return fmt.Sprintf("%s/%s/%d", companyID, key, docNumber)
}

func (s *InMemoryChainStore) Create(ctx context.Context, e *chain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := chainPos(e.CompanyID, e.CounterKey, e.DocNumber)
	if _, exists := s.entries[pos]; exists {
		return ierr.NewError("chain position already taken").
			WithHint("Concurrent issuance allocated this position").
			Mark(ierr.ErrVersionConflict)
	}

	cp := *e
	s.entries[pos] = &cp
	return nil
}

func (s *InMemoryChainStore) Get(ctx context.Context, companyID string, key types.CounterKey, docNumber int64) (*chain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[chainPos(companyID, key, docNumber)]
	if !exists {
		return nil, ierr.NewError("chain entry not found").
			WithHintf("No chain entry at position %d", docNumber).
			Mark(ierr.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

func (s *InMemoryChainStore) GetRange(ctx context.Context, companyID string, key types.CounterKey, from, to int64) ([]*chain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*chain.Entry
	for n := from; n <= to; n++ {
		if e, exists := s.entries[chainPos(companyID, key, n)]; exists {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// TamperEntry mutates a stored entry in place, bypassing the append-only
// surface. For corruption scenarios in tests only.
func (s *InMemoryChainStore) TamperEntry(companyID string, key types.CounterKey, docNumber int64, mutate func(*chain.Entry)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[chainPos(companyID, key, docNumber)]
	if !exists {
		return false
	}
	mutate(e)
	return true
}

// DeleteEntry removes a stored entry, bypassing the append-only surface.
// For corruption scenarios in tests only.
func (s *InMemoryChainStore) DeleteEntry(companyID string, key types.CounterKey, docNumber int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := chainPos(companyID, key, docNumber)
	if _, exists := s.entries[pos]; !exists {
		return false
	}
	delete(s.entries, pos)
	return true
}

func (s *InMemoryChainStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*chain.Entry)
}

// InMemoryAnchorStore is an in-memory implementation of chain.AnchorRepository
type InMemoryAnchorStore struct {
	mu      sync.RWMutex
	anchors map[string]*chain.Anchor
}

func NewInMemoryAnchorStore() *InMemoryAnchorStore {
	return &InMemoryAnchorStore{
		anchors: make(map[string]*chain.Anchor),
	}
}

func (s *InMemoryAnchorStore) Create(ctx context.Context, a *chain.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := chainPos(a.CompanyID, a.CounterKey, a.DocNumber)
	if _, exists := s.anchors[pos]; exists {
		return ierr.NewError("anchor position already taken").
			WithHint("Concurrent issuance allocated this position").
			Mark(ierr.ErrVersionConflict)
	}

	cp := *a
	s.anchors[pos] = &cp
	return nil
}

func (s *InMemoryAnchorStore) Get(ctx context.Context, companyID string, key types.CounterKey, docNumber int64) (*chain.Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.anchors[chainPos(companyID, key, docNumber)]
	if !exists {
		return nil, ierr.NewError("anchor not found").
			WithHintf("No anchor at position %d", docNumber).
			Mark(ierr.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (s *InMemoryAnchorStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anchors = make(map[string]*chain.Anchor)
}
