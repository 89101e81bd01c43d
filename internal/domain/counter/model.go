package counter

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Counter is the per-company, per-series monotonic sequence source. It is
// created lazily on first issuance and advanced by exactly +1 per successful
// issuance, only ever inside the atomic allocation unit.
type Counter struct {
	CompanyID  string           `db:"company_id" json:"company_id"`
	Key        types.CounterKey `db:"counter_key" json:"counter_key"`
	LastNumber int64            `db:"last_number" json:"last_number"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
	UpdatedBy  string           `db:"updated_by" json:"updated_by"`
}
