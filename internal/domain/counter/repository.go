package counter

import (
	"context"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Repository defines the interface for counter persistence operations
type Repository interface {
	// Get returns the counter, or ErrNotFound if no issuance has happened yet
	Get(ctx context.Context, companyID string, key types.CounterKey) (*Counter, error)

	// GetForUpdate reads the counter inside the ambient transaction and locks
	// the row so concurrent allocation units for the same (company, key)
	// serialize against each other. Returns ErrNotFound when absent.
	GetForUpdate(ctx context.Context, companyID string, key types.CounterKey) (*Counter, error)

	// Upsert writes the advanced counter inside the ambient transaction
	Upsert(ctx context.Context, c *Counter) error
}
