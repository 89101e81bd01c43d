package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chainvoice/chainvoice/internal/domain/audit"
	"github.com/chainvoice/chainvoice/internal/domain/chain"
	"github.com/chainvoice/chainvoice/internal/domain/counter"
	"github.com/chainvoice/chainvoice/internal/domain/document"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/hash"
	"github.com/chainvoice/chainvoice/internal/types"
)

const (
	// issueMaxRetries bounds how often an allocation unit is replayed after a
	// serialization or duplicate-position conflict
	issueMaxRetries = 5

	issueRetryInitialInterval = 25 * time.Millisecond
)

// IssuanceService performs the draft → issued transition: it allocates the
// next gap-free sequential number and appends the hash-linked chain entry in
// one atomic unit.
type IssuanceService interface {
	Issue(ctx context.Context, companyID, docID string) (*IssueResult, error)
}

// IssueResult reports an issuance outcome. Idempotent is true when the
// document was already issued and the stored outcome was returned unchanged.
type IssueResult struct {
	DocID              string           `json:"doc_id"`
	DocType            types.CounterKey `json:"doc_type"`
	DocNumber          int64            `json:"doc_number"`
	DocNumberFormatted string           `json:"doc_number_formatted"`
	IssuedAt           time.Time        `json:"issued_at"`
	ChainID            string           `json:"chain_id"`
	AnchorID           string           `json:"anchor_id"`
	SnapshotHash       string           `json:"snapshot_hash"`
	Idempotent         bool             `json:"idempotent"`
}

type issuanceService struct {
	ServiceParams
	access AccessService
}

func NewIssuanceService(params ServiceParams, access AccessService) IssuanceService {
	return &issuanceService{
		ServiceParams: params,
		access:        access,
	}
}

func (s *issuanceService) Issue(ctx context.Context, companyID, docID string) (*IssueResult, error) {
	actor, comp, err := s.access.ResolveActor(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.access.AuthorizeIssue(actor, comp, now); err != nil {
		return nil, err
	}

	doc, err := s.DocumentRepo.Get(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}

	// Idempotent fast path: a repeated call for an issued document returns the
	// stored outcome without touching the counter or the chain.
	if doc.IsIssued() {
		return s.issuedResult(doc), nil
	}

	if err := s.validateDraft(doc); err != nil {
		return nil, err
	}
	if err := s.access.CheckPeriodLock(actor, comp, doc.DeliveryDate); err != nil {
		return nil, err
	}

	var result *IssueResult
	operation := func() error {
		txErr := s.DB.WithTx(ctx, func(ctx context.Context) error {
			r, err := s.issueInTx(ctx, companyID, docID, actor.ID)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
		if txErr != nil && !ierr.IsVersionConflict(txErr) {
			return backoff.Permanent(txErr)
		}
		return txErr
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = issueRetryInitialInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, issueMaxRetries), ctx)); err != nil {
		var perm *backoff.PermanentError
		if ierr.As(err, &perm) {
			err = perm.Err
		}
		return nil, err
	}

	if !result.Idempotent {
		s.recordIssued(ctx, companyID, actor.ID, result)
	}
	return result, nil
}

// issueInTx runs the allocation unit. The ambient transaction holds a row
// lock on the counter from the first read until commit, so at most one unit
// per (company, counterKey) makes progress at a time.
func (s *issuanceService) issueInTx(ctx context.Context, companyID, docID, actorID string) (*IssueResult, error) {
	doc, err := s.DocumentRepo.Get(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}

	// A concurrent unit may have issued this document between the fast path
	// and lock acquisition
	if doc.IsIssued() {
		return s.issuedResult(doc), nil
	}
	if doc.DocStatus != types.DocumentStatusDraft {
		return nil, ierr.NewError("document is not a draft").
			WithHintf("Document %s is %s and cannot be issued", docID, doc.DocStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	key := doc.DocType

	var lastNumber int64
	existing, err := s.CounterRepo.GetForUpdate(ctx, companyID, key)
	switch {
	case err == nil:
		lastNumber = existing.LastNumber
	case ierr.IsNotFound(err):
		// First issuance for this counter. There is no row to lock yet, so
		// two units can both see "absent"; the chain entry's unique position
		// constraint breaks the tie and the loser retries.
		lastNumber = 0
	default:
		return nil, err
	}

	docNumber := lastNumber + 1
	issuedAt := time.Now().UTC().Truncate(time.Millisecond)

	snapshotHash := s.snapshotHash(companyID, doc, docNumber)

	prevHash := hash.Genesis
	if docNumber > 1 {
		prev, err := s.ChainRepo.Get(ctx, companyID, key, docNumber-1)
		switch {
		case err == nil:
			prevHash = prev.Hash
		case ierr.IsNotFound(err):
			// Predecessor missing despite a positive counter. Link from the
			// genesis sentinel and let verification surface the gap.
			s.Logger.Warnw("previous chain entry missing at issuance",
				"company_id", companyID,
				"counter_key", key,
				"doc_number", docNumber,
			)
		default:
			return nil, err
		}
	}

	hashPrev := prevHash
	if hashPrev == hash.Genesis {
		hashPrev = ""
	}
	chainHash := hash.ChainV1(hash.ChainInput{
		CompanyID:      companyID,
		CounterKey:     string(key),
		DocType:        string(doc.DocType),
		DocNumber:      docNumber,
		DocID:          doc.ID,
		IssuedAtMillis: issuedAt.UnixMilli(),
		PrevHash:       hashPrev,
	})

	if err := s.DocumentRepo.MarkIssued(ctx, companyID, docID, &document.Issuance{
		SequentialNumber:      docNumber,
		FinalizedAt:           issuedAt,
		FinalizedBy:           actorID,
		ImmutableSnapshotHash: snapshotHash,
	}); err != nil {
		return nil, err
	}

	if err := s.CounterRepo.Upsert(ctx, &counter.Counter{
		CompanyID:  companyID,
		Key:        key,
		LastNumber: docNumber,
		UpdatedAt:  issuedAt,
		UpdatedBy:  actorID,
	}); err != nil {
		return nil, err
	}

	entry := &chain.Entry{
		ID:         chain.EntryID(key, docNumber),
		CompanyID:  companyID,
		CounterKey: key,
		DocNumber:  docNumber,
		DocID:      doc.ID,
		DocType:    string(doc.DocType),
		IssuedAt:   issuedAt,
		PrevHash:   prevHash,
		Hash:       chainHash,
		CreatedAt:  issuedAt,
		CreatedBy:  actorID,
	}
	if err := s.ChainRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	anchor := &chain.Anchor{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ANCHOR),
		CompanyID:    companyID,
		CounterKey:   key,
		DocNumber:    docNumber,
		DocID:        doc.ID,
		DocumentHash: snapshotHash,
		CreatedAt:    issuedAt,
		CreatedBy:    actorID,
	}
	if err := s.AnchorRepo.Create(ctx, anchor); err != nil {
		return nil, err
	}

	return &IssueResult{
		DocID:              doc.ID,
		DocType:            doc.DocType,
		DocNumber:          docNumber,
		DocNumberFormatted: strconv.FormatInt(docNumber, 10),
		IssuedAt:           issuedAt,
		ChainID:            entry.ID,
		AnchorID:           anchor.ID,
		SnapshotHash:       snapshotHash,
		Idempotent:         false,
	}, nil
}

func (s *issuanceService) validateDraft(doc *document.Document) error {
	if doc.DocStatus != types.DocumentStatusDraft {
		return ierr.NewError("document is not a draft").
			WithHintf("Document %s is %s and cannot be issued", doc.ID, doc.DocStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if err := doc.DocType.Validate(); err != nil {
		return err
	}
	if doc.ClientName == "" {
		return ierr.NewError("client name is required").
			WithHint("A document cannot be issued without a client name").
			Mark(ierr.ErrValidation)
	}
	if doc.DeliveryDate == nil {
		return ierr.NewError("delivery date is required").
			WithHint("A document cannot be issued without a delivery date").
			Mark(ierr.ErrValidation)
	}
	if len(doc.Items) == 0 {
		return ierr.NewError("document has no line items").
			WithHint("A document cannot be issued without line items").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// snapshotHash freezes the document's economic content. Field order is fixed;
// changing it invalidates every stored snapshot hash.
func (s *issuanceService) snapshotHash(companyID string, doc *document.Document, docNumber int64) string {
	deliveryDate := ""
	if doc.DeliveryDate != nil {
		deliveryDate = doc.DeliveryDate.UTC().Format(time.RFC3339)
	}
	itemsJSON, _ := json.Marshal(doc.Items)

	return hash.Snapshot(
		companyID,
		doc.ID,
		string(doc.DocType),
		strconv.FormatInt(docNumber, 10),
		doc.ClientName,
		doc.ClientNumber,
		deliveryDate,
		string(itemsJSON),
		doc.Discount.String(),
	)
}

func (s *issuanceService) issuedResult(doc *document.Document) *IssueResult {
	issuedAt := time.Time{}
	if doc.FinalizedAt != nil {
		issuedAt = *doc.FinalizedAt
	}
	return &IssueResult{
		DocID:              doc.ID,
		DocType:            doc.DocType,
		DocNumber:          doc.SequentialNumber,
		DocNumberFormatted: strconv.FormatInt(doc.SequentialNumber, 10),
		IssuedAt:           issuedAt,
		ChainID:            chain.EntryID(doc.DocType, doc.SequentialNumber),
		SnapshotHash:       doc.ImmutableSnapshotHash,
		Idempotent:         true,
	}
}

// recordIssued writes the audit trail and emits the domain event. Both are
// best-effort after commit; the issuance itself has already succeeded.
func (s *issuanceService) recordIssued(ctx context.Context, companyID, actorID string, result *IssueResult) {
	event := audit.NewEvent(companyID, types.ModuleKeyAccounting, types.AuditTypeDocumentIssued).
		WithEntity("documents", result.DocID).
		WithActor(actorID).
		WithContext(map[string]any{
			"counter_key":   string(result.DocType),
			"doc_number":    result.DocNumber,
			"chain_id":      result.ChainID,
			"snapshot_hash": result.SnapshotHash,
		})
	if err := s.AuditRepo.Create(ctx, event); err != nil {
		s.Logger.Errorw("failed to record issuance audit event",
			"error", err,
			"company_id", companyID,
			"doc_id", result.DocID,
		)
	}

	if err := s.EventPublisher.Publish(ctx, types.TopicDocumentIssued, companyID, result); err != nil {
		s.Logger.Errorw("failed to publish issuance event",
			"error", err,
			"company_id", companyID,
			"doc_id", result.DocID,
		)
	}
}
