package service

import (
	"context"

	"github.com/chainvoice/chainvoice/internal/domain/chain"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/hash"
	"github.com/chainvoice/chainvoice/internal/types"
)

// MaxVerifyRange caps how many chain positions a single verification walks
const MaxVerifyRange int64 = 2000

// VerificationService walks a contiguous chain segment and reports the first
// break, if any. Verification is read-only and never repairs anything.
type VerificationService interface {
	// Verify checks positions [from, to] of the given company and counter key
	Verify(ctx context.Context, companyID string, key types.CounterKey, from, to int64) (*VerificationResult, error)

	// VerifyRange is Verify without the access checks, for internal callers
	// such as the scheduled sweep
	VerifyRange(ctx context.Context, companyID string, key types.CounterKey, from, to int64) (*VerificationResult, error)
}

// VerificationResult reports one verification walk. When OK is false, the
// First* fields locate and classify the break; CheckedUntil is always the
// last position that verified, from-1 when nothing did.
type VerificationResult struct {
	OK            bool              `json:"ok"`
	CompanyID     string            `json:"company_id"`
	CounterKey    types.CounterKey  `json:"counter_key"`
	From          int64             `json:"from"`
	To            int64             `json:"to"`
	Checked       int64             `json:"checked"`
	CheckedUntil  int64             `json:"checked_until"`
	FirstBrokenAt int64             `json:"first_broken_at,omitempty"`
	Reason        types.BreakReason `json:"reason,omitempty"`
	Expected      string            `json:"expected,omitempty"`
	Actual        string            `json:"actual,omitempty"`

	// Last identifies the newest entry of a fully verified range
	Last *ChainHead `json:"last,omitempty"`
}

// ChainHead pins a chain position to its hash
type ChainHead struct {
	DocNumber int64  `json:"doc_number"`
	Hash      string `json:"hash"`
}

type verificationService struct {
	ServiceParams
	access AccessService
}

func NewVerificationService(params ServiceParams, access AccessService) VerificationService {
	return &verificationService{
		ServiceParams: params,
		access:        access,
	}
}

func (s *verificationService) Verify(ctx context.Context, companyID string, key types.CounterKey, from, to int64) (*VerificationResult, error) {
	actor, comp, err := s.access.ResolveActor(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeVerify(actor, comp); err != nil {
		return nil, err
	}
	return s.VerifyRange(ctx, companyID, key, from, to)
}

func (s *verificationService) VerifyRange(ctx context.Context, companyID string, key types.CounterKey, from, to int64) (*VerificationResult, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if from < 1 || to < from {
		return nil, ierr.NewError("invalid verification range").
			WithHintf("Range [%d, %d] is not a valid chain segment", from, to).
			Mark(ierr.ErrValidation)
	}
	if to-from+1 > MaxVerifyRange {
		return nil, ierr.NewError("verification range too large").
			WithHintf("At most %d positions can be verified in one call", MaxVerifyRange).
			Mark(ierr.ErrValidation)
	}

	result := &VerificationResult{
		OK:           true,
		CompanyID:    companyID,
		CounterKey:   key,
		From:         from,
		To:           to,
		CheckedUntil: from - 1,
	}

	// Linkage context: the hash of entry from-1, or the genesis sentinel when
	// the walk starts at position 1
	prevHash := hash.Genesis
	if from > 1 {
		prev, err := s.ChainRepo.Get(ctx, companyID, key, from-1)
		switch {
		case err == nil:
			prevHash = prev.Hash
		case ierr.IsNotFound(err):
			result.OK = false
			result.FirstBrokenAt = from - 1
			result.Reason = types.BreakReasonMissingPrevForRange
			return result, nil
		default:
			return nil, err
		}
	}

	entries, err := s.ChainRepo.GetRange(ctx, companyID, key, from, to)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[int64]*chain.Entry, len(entries))
	for _, e := range entries {
		byNumber[e.DocNumber] = e
	}

	for n := from; n <= to; n++ {
		entry, ok := byNumber[n]
		if !ok {
			return s.broken(result, n, types.BreakReasonMissingEntry, "", ""), nil
		}

		if !s.schemaValid(entry, key, n) {
			return s.broken(result, n, types.BreakReasonSchemaInvalid, "", ""), nil
		}

		if entry.PrevHash != prevHash {
			return s.broken(result, n, types.BreakReasonPrevHashMismatch, prevHash, entry.PrevHash), nil
		}

		recomputed, ok := hash.Chain(hash.ChainFormatV1, entry.HashInput())
		if !ok {
			return s.broken(result, n, types.BreakReasonSchemaInvalid, "", ""), nil
		}
		if recomputed != entry.Hash {
			return s.broken(result, n, types.BreakReasonHashMismatch, recomputed, entry.Hash), nil
		}

		prevHash = entry.Hash
		result.Checked++
		result.CheckedUntil = n
	}

	result.Last = &ChainHead{DocNumber: to, Hash: prevHash}
	return result, nil
}

// schemaValid checks the persisted fields a hash recomputation depends on
func (s *verificationService) schemaValid(e *chain.Entry, key types.CounterKey, n int64) bool {
	if e.Hash == "" || e.DocID == "" || e.DocType == "" || e.PrevHash == "" {
		return false
	}
	if e.DocNumber != n || e.CounterKey != key {
		return false
	}
	if e.IssuedAt.IsZero() {
		return false
	}
	return true
}

func (s *verificationService) broken(result *VerificationResult, at int64, reason types.BreakReason, expected, actual string) *VerificationResult {
	result.OK = false
	result.FirstBrokenAt = at
	result.Reason = reason
	result.Expected = expected
	result.Actual = actual
	return result
}
