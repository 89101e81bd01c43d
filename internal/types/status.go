package types

import (
	ierr "github.com/chainvoice/chainvoice/internal/errors"
)

// Status is a type for the lifecycle status of a stored resource.
// Any changes to this type should be reflected in the database schema by running migrations
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// DocumentStatus is the business lifecycle of an issuable document.
// draft → issued is performed exactly once by the issuance service;
// issued → voided is a one-way soft transition that never rewrites chain history.
type DocumentStatus string

const (
	DocumentStatusDraft  DocumentStatus = "draft"
	DocumentStatusIssued DocumentStatus = "issued"
	DocumentStatusVoided DocumentStatus = "voided"
)

func (s DocumentStatus) Validate() error {
	switch s {
	case DocumentStatusDraft, DocumentStatusIssued, DocumentStatusVoided:
		return nil
	default:
		return ierr.NewError("invalid document status").
			WithHintf("Unknown document status: %s", s).
			Mark(ierr.ErrValidation)
	}
}

// BillingStatus is the subscription state of a company.
// cancelled is terminal and is never transitioned out of automatically.
type BillingStatus string

const (
	BillingStatusTrial     BillingStatus = "trial"
	BillingStatusActive    BillingStatus = "active"
	BillingStatusGrace     BillingStatus = "grace"
	BillingStatusSuspended BillingStatus = "suspended"
	BillingStatusCancelled BillingStatus = "cancelled"
)

// UserRole is the pre-resolved role of an acting user within their company
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleDispatcher UserRole = "dispatcher"
	UserRoleViewer     UserRole = "viewer"
	UserRoleSuperAdmin UserRole = "super_admin"
)

// ModuleKey identifies a feature module a company may be entitled to
type ModuleKey string

const (
	ModuleKeyAccounting ModuleKey = "accounting"
	ModuleKeyBilling    ModuleKey = "billing"
)
