package testutil

import (
	"context"
	"sync"

	"github.com/chainvoice/chainvoice/internal/domain/notification"
)

// InMemoryNotificationStore is an in-memory implementation of notification.Repository
type InMemoryNotificationStore struct {
	mu            sync.RWMutex
	notifications []*notification.Notification
}

func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{}
}

func (s *InMemoryNotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *n
	s.notifications = append(s.notifications, &cp)
	return nil
}

func (s *InMemoryNotificationStore) ListByCompany(ctx context.Context, companyID string, limit int) ([]*notification.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*notification.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].CompanyID != companyID {
			continue
		}
		cp := *s.notifications[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryNotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}
