// Package hash implements the canonical digests for the sequential document
// ledger: the versioned chain-link hash and the document content snapshot hash.
// Every function here is pure; any change to field order, delimiter or the set
// of hashed fields is a breaking format change and requires a new version tag.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	// ChainFormatV1 is the only chain hash format in existence. Old entries
	// must remain verifiable under the rule they were written with, so this
	// tag is part of the hashed preimage.
	ChainFormatV1 = "v1"

	// Genesis is the sentinel prev-hash for the first entry of a chain
	Genesis = "GENESIS"

	// delimiter joins the canonical parts of a preimage
	delimiter = "|"
)

// Sum returns the lowercase hex SHA-256 of the UTF-8 bytes of s
func Sum(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DigestV1 hashes the given parts joined with the canonical delimiter,
// prefixed with the v1 format tag
func DigestV1(parts ...string) string {
	return Sum(ChainFormatV1 + delimiter + strings.Join(parts, delimiter))
}

// ChainInput holds the persisted fields a chain-link hash is computed from.
// Nothing outside this set may affect the hash.
type ChainInput struct {
	CompanyID      string
	CounterKey     string
	DocType        string
	DocNumber      int64
	DocID          string
	IssuedAtMillis int64
	// PrevHash is the hash of the previous entry, or empty at position 1
	PrevHash string
}

// ChainV1 computes the canonical v1 chain hash:
//
//	sha256("v1|{companyId}|{counterKey}|{docType}|{docNumber}|{docId}|{issuedAtMillis}|{prevHashOrGENESIS}")
func ChainV1(in ChainInput) string {
	prev := in.PrevHash
	if prev == "" {
		prev = Genesis
	}
	return DigestV1(
		in.CompanyID,
		in.CounterKey,
		in.DocType,
		strconv.FormatInt(in.DocNumber, 10),
		in.DocID,
		strconv.FormatInt(in.IssuedAtMillis, 10),
		prev,
	)
}

// Chain dispatches on the format version tag. Only v1 exists today; the
// verifier calls through here so that entries written under a future format
// keep verifying under their original rule.
func Chain(version string, in ChainInput) (string, bool) {
	switch version {
	case ChainFormatV1:
		return ChainV1(in), true
	default:
		return "", false
	}
}

// Snapshot computes the content hash freezing a document's economic fields at
// issuance time. It is independent of the chain hash and carries no version
// tag; the parts are joined with the canonical delimiter and hashed directly.
func Snapshot(parts ...string) string {
	return Sum(strings.Join(parts, delimiter))
}
