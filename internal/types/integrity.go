package types

// BreakReason classifies the first divergence found while walking a chain.
// These values are machine-parseable and consumed by operator tooling.
type BreakReason string

const (
	// BreakReasonMissingEntry - no chain entry exists at the expected position
	BreakReasonMissingEntry BreakReason = "MISSING_ENTRY"
	// BreakReasonSchemaInvalid - the entry exists but its persisted fields are malformed
	BreakReasonSchemaInvalid BreakReason = "SCHEMA_INVALID"
	// BreakReasonPrevHashMismatch - the entry does not link to its predecessor's hash
	BreakReasonPrevHashMismatch BreakReason = "PREV_HASH_MISMATCH"
	// BreakReasonHashMismatch - recomputing the entry's hash from its persisted
	// fields does not reproduce the stored hash
	BreakReasonHashMismatch BreakReason = "HASH_MISMATCH"
	// BreakReasonMissingPrevForRange - the entry before the requested range is
	// absent, so linkage context for the range cannot be established
	BreakReasonMissingPrevForRange BreakReason = "MISSING_PREV_FOR_RANGE"
)

// NotificationSeverity grades tenant-visible notifications
type NotificationSeverity string

const (
	NotificationSeverityInfo     NotificationSeverity = "info"
	NotificationSeverityWarning  NotificationSeverity = "warning"
	NotificationSeverityCritical NotificationSeverity = "critical"
)

// Audit event types written by this service
const (
	AuditTypeDocumentIssued       = "document_issued"
	AuditTypeIntegrityChainBroken = "integrity_chain_broken"
	AuditTypeBillingStatusChanged = "billing_status_changed"
)

// Notification types written by this service
const (
	NotificationTypeIntegrityChainBroken = "integrity_chain_broken"
	NotificationTypeBillingGrace         = "billing_grace"
	NotificationTypeBillingSuspended     = "billing_suspended"
)

// Domain event topics published on the outbound bus
const (
	TopicDocumentIssued      = "document.issued"
	TopicIntegrityBroken     = "integrity.broken"
	TopicBillingTransitioned = "billing.transitioned"
)
