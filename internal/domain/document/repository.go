package document

import (
	"context"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Repository defines the interface for document persistence operations.
// Reads inside an ambient transaction observe that transaction's snapshot.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, companyID, id string) (*Document, error)
	List(ctx context.Context, companyID string, filter *Filter) ([]*Document, error)

	// MarkIssued performs the one-time draft → issued transition
	MarkIssued(ctx context.Context, companyID, id string, issuance *Issuance) error

	// MarkVoided performs the one-way issued → voided transition
	MarkVoided(ctx context.Context, companyID, id string, v *Void) error
}

// Filter narrows document listings
type Filter struct {
	DocType   *types.CounterKey
	DocStatus *types.DocumentStatus
	Limit     int
}
