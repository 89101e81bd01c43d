package notification

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Notification is a tenant-visible alert record. Delivery (email, push) is an
// external concern; this row is the boundary.
type Notification struct {
	ID        string                     `db:"id" json:"id"`
	CompanyID string                     `db:"company_id" json:"company_id"`
	Type      string                     `db:"type" json:"type"`
	Title     string                     `db:"title" json:"title"`
	Body      string                     `db:"body" json:"body"`
	Severity  types.NotificationSeverity `db:"severity" json:"severity"`

	// Set for integrity break alerts
	CounterKey types.CounterKey  `db:"counter_key" json:"counter_key,omitempty"`
	BrokenAt   int64             `db:"broken_at" json:"broken_at,omitempty"`
	Reason     types.BreakReason `db:"reason" json:"reason,omitempty"`

	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
