package chain

import (
	"context"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Repository defines the interface for chain entry persistence. The chain is
// append-only: there is no update or delete operation by design.
type Repository interface {
	// Create appends an entry inside the ambient transaction
	Create(ctx context.Context, entry *Entry) error

	// Get point-reads one entry by its deterministic position.
	// Returns ErrNotFound when absent.
	Get(ctx context.Context, companyID string, key types.CounterKey, docNumber int64) (*Entry, error)

	// GetRange batch-reads entries for docNumber in [from, to], ordered by
	// docNumber ascending. Missing positions are simply absent from the result.
	GetRange(ctx context.Context, companyID string, key types.CounterKey, from, to int64) ([]*Entry, error)
}

// AnchorRepository defines the interface for anchor persistence, append-only
// like the chain itself
type AnchorRepository interface {
	Create(ctx context.Context, anchor *Anchor) error
	Get(ctx context.Context, companyID string, key types.CounterKey, docNumber int64) (*Anchor, error)
}
