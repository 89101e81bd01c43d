package document

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/shopspring/decimal"
)

// Document is an issuable business document (invoice, receipt, credit note,
// delivery note). It is authored as a draft, issued exactly once through the
// ledger, and may later be soft-voided without touching chain history.
type Document struct {
	ID      string           `db:"id" json:"id"`
	DocType types.CounterKey `db:"doc_type" json:"doc_type"`

	DocStatus types.DocumentStatus `db:"doc_status" json:"doc_status"`

	// SequentialNumber is 0 until issued, then immutable
	SequentialNumber int64 `db:"sequential_number" json:"sequential_number"`

	ClientName   string     `db:"client_name" json:"client_name"`
	ClientNumber string     `db:"client_number" json:"client_number"`
	DeliveryDate *time.Time `db:"delivery_date" json:"delivery_date,omitempty"`

	Items    []LineItem      `db:"items" json:"items"`
	Discount decimal.Decimal `db:"discount" json:"discount"`

	// Set atomically at issuance
	FinalizedAt           *time.Time `db:"finalized_at" json:"finalized_at,omitempty"`
	FinalizedBy           string     `db:"finalized_by" json:"finalized_by,omitempty"`
	ImmutableSnapshotHash string     `db:"immutable_snapshot_hash" json:"immutable_snapshot_hash,omitempty"`

	// Soft-void bookkeeping; issued documents keep their number when voided
	VoidedAt   *time.Time `db:"voided_at" json:"voided_at,omitempty"`
	VoidedBy   string     `db:"voided_by" json:"voided_by,omitempty"`
	VoidReason string     `db:"void_reason" json:"void_reason,omitempty"`

	types.BaseModel
}

// LineItem is one economic line of a document. Quantities and prices are
// decimals; their serialized form feeds the content snapshot hash.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// IsIssued reports whether the document has been assigned a sequential number
func (d *Document) IsIssued() bool {
	return d.DocStatus == types.DocumentStatusIssued && d.SequentialNumber > 0
}

// Issuance carries the fields written on the draft → issued transition.
// All of them are persisted in the same atomic unit that advances the counter.
type Issuance struct {
	SequentialNumber      int64
	FinalizedAt           time.Time
	FinalizedBy           string
	ImmutableSnapshotHash string
}

// Void carries the fields written on the issued → voided transition
type Void struct {
	VoidedAt time.Time
	VoidedBy string
	Reason   string
}
