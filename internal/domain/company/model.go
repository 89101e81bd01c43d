package company

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Company is a tenant. All ledger data is owned by exactly one company.
type Company struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	BillingStatus          types.BillingStatus `db:"billing_status" json:"billing_status"`
	TrialUntil             *time.Time          `db:"trial_until" json:"trial_until,omitempty"`
	PaidUntil              *time.Time          `db:"paid_until" json:"paid_until,omitempty"`
	GracePeriodDays        int                 `db:"grace_period_days" json:"grace_period_days"`
	BillingStatusChangedAt *time.Time          `db:"billing_status_changed_at" json:"billing_status_changed_at,omitempty"`
	BillingStatusChangedBy string              `db:"billing_status_changed_by" json:"billing_status_changed_by,omitempty"`

	// Modules maps a module key to its entitlement flag
	Modules map[string]bool `db:"modules" json:"modules"`

	// AccountingLockedUntil closes the accounting period: documents whose
	// delivery date falls on or before this instant cannot be issued
	AccountingLockedUntil *time.Time `db:"accounting_locked_until" json:"accounting_locked_until,omitempty"`

	Status    types.Status `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// ModuleEnabled reports whether the company is entitled to the given module
func (c *Company) ModuleEnabled(key types.ModuleKey) bool {
	if c.Modules == nil {
		return false
	}
	return c.Modules[string(key)]
}

// BillingAllowsWrite reports whether the company's billing state permits
// mutating operations at the given instant. Trial companies may write while
// the trial is running; active and grace companies may always write.
func (c *Company) BillingAllowsWrite(now time.Time) bool {
	switch c.BillingStatus {
	case types.BillingStatusActive, types.BillingStatusGrace:
		return true
	case types.BillingStatusTrial:
		return c.TrialUntil != nil && c.TrialUntil.After(now)
	default:
		return false
	}
}

// GraceEnd returns the end of the grace window following PaidUntil, using the
// fallback when the company has no grace period configured
func (c *Company) GraceEnd(defaultGraceDays int) *time.Time {
	if c.PaidUntil == nil {
		return nil
	}
	days := c.GracePeriodDays
	if days <= 0 {
		days = defaultGraceDays
	}
	end := c.PaidUntil.AddDate(0, 0, days)
	return &end
}
