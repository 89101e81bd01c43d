package notification

import "context"

// Repository defines the interface for tenant notification persistence
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByCompany(ctx context.Context, companyID string, limit int) ([]*Notification, error)
}
