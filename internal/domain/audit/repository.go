package audit

import "context"

// Repository defines the interface for the append-only audit sink
type Repository interface {
	Create(ctx context.Context, event *Event) error
	ListByCompany(ctx context.Context, companyID string, limit int) ([]*Event, error)
}
