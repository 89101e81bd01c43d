package audit

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/types"
)

// Event is one append-only audit record. Audit writes are best-effort: a
// failed write is logged and swallowed, never failing the primary operation,
// because the chain itself is the authoritative integrity record.
type Event struct {
	ID        string `db:"id" json:"id"`
	CompanyID string `db:"company_id" json:"company_id"`
	ModuleKey string `db:"module_key" json:"module_key"`
	Type      string `db:"type" json:"type"`

	// Entity reference
	EntityCollection string `db:"entity_collection" json:"entity_collection"`
	EntityDocID      string `db:"entity_doc_id" json:"entity_doc_id"`

	CreatedBy string    `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Context holds event-specific fields (fromStatus, toStatus, reason, ...)
	Context map[string]any `db:"context" json:"context,omitempty"`
}

// NewEvent starts an audit record for the given company and event type
func NewEvent(companyID string, moduleKey types.ModuleKey, eventType string) *Event {
	return &Event{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT),
		CompanyID: companyID,
		ModuleKey: string(moduleKey),
		Type:      eventType,
		CreatedAt: time.Now().UTC(),
	}
}

// WithEntity points the event at the record it describes
func (e *Event) WithEntity(collection, docID string) *Event {
	e.EntityCollection = collection
	e.EntityDocID = docID
	return e
}

// WithActor records who triggered the event
func (e *Event) WithActor(userID string) *Event {
	e.CreatedBy = userID
	return e
}

// WithContext attaches event-specific fields
func (e *Event) WithContext(ctx map[string]any) *Event {
	e.Context = ctx
	return e
}
