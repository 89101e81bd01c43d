package testutil

import (
	"context"
	"sync"

	"github.com/chainvoice/chainvoice/internal/domain/audit"
)

// InMemoryAuditStore is an in-memory implementation of audit.Repository
type InMemoryAuditStore struct {
	mu     sync.RWMutex
	events []*audit.Event
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{}
}

func (s *InMemoryAuditStore) Create(ctx context.Context, e *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.events = append(s.events, &cp)
	return nil
}

func (s *InMemoryAuditStore) ListByCompany(ctx context.Context, companyID string, limit int) ([]*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].CompanyID != companyID {
			continue
		}
		cp := *s.events[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// EventsOfType returns all stored events of the given type, for assertions
func (s *InMemoryAuditStore) EventsOfType(eventType string) []*audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*audit.Event
	for _, e := range s.events {
		if e.Type == eventType {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

func (s *InMemoryAuditStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
