package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/chainvoice/chainvoice/internal/domain/company"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
)

// InMemoryCompanyStore is an in-memory implementation of company.Repository
type InMemoryCompanyStore struct {
	mu        sync.RWMutex
	companies map[string]*company.Company
}

func NewInMemoryCompanyStore() *InMemoryCompanyStore {
	return &InMemoryCompanyStore{
		companies: make(map[string]*company.Company),
	}
}

func (s *InMemoryCompanyStore) Create(ctx context.Context, c *company.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.companies[c.ID]; exists {
		return ierr.NewError("company already exists").
			WithHintf("Company %s already exists", c.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *InMemoryCompanyStore) Get(ctx context.Context, id string) (*company.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.companies[id]
	if !exists {
		return nil, ierr.NewError("company not found").
			WithHintf("Company %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryCompanyStore) ListByBillingStatus(ctx context.Context, statuses []types.BillingStatus) ([]*company.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[types.BillingStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	var out []*company.Company
	for _, c := range s.companies {
		if c.Status == types.StatusActive && wanted[c.BillingStatus] {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemoryCompanyStore) UpdateBillingStatus(ctx context.Context, id string, update *company.BillingStatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.companies[id]
	if !exists {
		return ierr.NewError("company not found").
			WithHintf("Company %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	c.BillingStatus = update.Status
	if update.PaidUntil != nil {
		c.PaidUntil = update.PaidUntil
	}
	changedAt := update.ChangedAt
	c.BillingStatusChangedAt = &changedAt
	c.BillingStatusChangedBy = update.ChangedBy
	c.UpdatedAt = update.ChangedAt
	return nil
}

func (s *InMemoryCompanyStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = make(map[string]*company.Company)
}
