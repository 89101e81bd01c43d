package company

import (
	"context"
	"time"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Repository defines the interface for company persistence operations
type Repository interface {
	Create(ctx context.Context, company *Company) error
	Get(ctx context.Context, id string) (*Company, error)
	ListByBillingStatus(ctx context.Context, statuses []types.BillingStatus) ([]*Company, error)

	// UpdateBillingStatus transitions the billing state machine; it is only
	// called by the billing enforcer
	UpdateBillingStatus(ctx context.Context, id string, update *BillingStatusUpdate) error
}

// BillingStatusUpdate carries one billing state transition.
// PaidUntil is left unchanged when nil.
type BillingStatusUpdate struct {
	Status    types.BillingStatus
	PaidUntil *time.Time
	ChangedBy string
	ChangedAt time.Time
}
