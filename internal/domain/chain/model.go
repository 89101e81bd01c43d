package chain

import (
	"fmt"
	"time"

	"github.com/chainvoice/chainvoice/internal/hash"
	"github.com/chainvoice/chainvoice/internal/types"
)

// Entry is one append-only, hash-linked record per issued document.
// Entries are immutable and never deleted once written; the access layer is
// expected to deny updates since the storage engine itself does not.
type Entry struct {
	// ID is deterministic: "{counterKey}_{docNumber}"
	ID         string           `db:"id" json:"id"`
	CompanyID  string           `db:"company_id" json:"company_id"`
	CounterKey types.CounterKey `db:"counter_key" json:"counter_key"`
	DocNumber  int64            `db:"doc_number" json:"doc_number"`
	DocID      string           `db:"doc_id" json:"doc_id"`
	DocType    string           `db:"doc_type" json:"doc_type"`

	// IssuedAt is the instant hashed into the entry, millisecond precision.
	// The persisted value and the hashed value are the same by construction.
	IssuedAt time.Time `db:"issued_at" json:"issued_at"`

	// PrevHash is the hash of entry DocNumber-1, or GENESIS at position 1
	PrevHash string `db:"prev_hash" json:"prev_hash"`
	Hash     string `db:"hash" json:"hash"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	CreatedBy string    `db:"created_by" json:"created_by"`
}

// EntryID builds the deterministic chain entry id
func EntryID(key types.CounterKey, docNumber int64) string {
	return fmt.Sprintf("%s_%d", key, docNumber)
}

// HashInput reconstructs the canonical hash input from persisted fields alone
func (e *Entry) HashInput() hash.ChainInput {
	prev := e.PrevHash
	if prev == hash.Genesis {
		prev = ""
	}
	return hash.ChainInput{
		CompanyID:      e.CompanyID,
		CounterKey:     string(e.CounterKey),
		DocType:        e.DocType,
		DocNumber:      e.DocNumber,
		DocID:          e.DocID,
		IssuedAtMillis: e.IssuedAt.UnixMilli(),
		PrevHash:       prev,
	}
}

// Anchor is the redundant (counterKey, docNumber) → documentHash record kept
// alongside a chain entry for independent cross-checking. Not required for
// chain verification.
type Anchor struct {
	ID           string           `db:"id" json:"id"`
	CompanyID    string           `db:"company_id" json:"company_id"`
	CounterKey   types.CounterKey `db:"counter_key" json:"counter_key"`
	DocNumber    int64            `db:"doc_number" json:"doc_number"`
	DocID        string           `db:"doc_id" json:"doc_id"`
	DocumentHash string           `db:"document_hash" json:"document_hash"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	CreatedBy    string           `db:"created_by" json:"created_by"`
}
