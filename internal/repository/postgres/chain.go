package postgres

import (
	"context"
	"database/sql"

	"github.com/chainvoice/chainvoice/internal/domain/chain"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
	"github.com/chainvoice/chainvoice/internal/types"
)

type chainRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewChainRepository(db *postgres.DB, logger *logger.Logger) chain.Repository {
	return &chainRepository{db: db, logger: logger}
}

const chainColumns = `
	id, company_id, counter_key, doc_number, doc_id, doc_type,
	issued_at, prev_hash, hash, created_at, created_by
`

// Create appends a chain entry. The unique (company_id, counter_key,
// doc_number) constraint is the final guard against two concurrent units
// allocating the same position; a violation surfaces as a retryable conflict.
func (r *chainRepository) Create(ctx context.Context, e *chain.Entry) error {
	query := `
	INSERT INTO chain_entries (` + chainColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		e.ID,
		e.CompanyID,
		e.CounterKey,
		e.DocNumber,
		e.DocID,
		e.DocType,
		e.IssuedAt,
		e.PrevHash,
		e.Hash,
		e.CreatedAt,
		e.CreatedBy,
	)
	if err != nil {
		if postgres.IsRetryableTxError(err) {
			return ierr.WithError(err).
				WithHint("Concurrent issuance allocated this position").
				Mark(ierr.ErrVersionConflict)
		}
		return ierr.WithError(err).
			WithHint("Failed to append chain entry").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *chainRepository) Get(ctx context.Context, companyID string, key types.CounterKey, docNumber int64) (*chain.Entry, error) {
	query := `
	SELECT ` + chainColumns + `
	FROM chain_entries
	WHERE company_id = $1 AND counter_key = $2 AND doc_number = $3
	`

	var e chain.Entry
	err := r.db.GetQuerier(ctx).GetContext(ctx, &e, query, companyID, key, docNumber)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("chain entry not found").
			WithHintf("No chain entry at position %d", docNumber).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get chain entry").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *chainRepository) GetRange(ctx context.Context, companyID string, key types.CounterKey, from, to int64) ([]*chain.Entry, error) {
	query := `
	SELECT ` + chainColumns + `
	FROM chain_entries
	WHERE company_id = $1 AND counter_key = $2 AND doc_number BETWEEN $3 AND $4
	ORDER BY doc_number ASC
	`

	var entries []*chain.Entry
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query, companyID, key, from, to)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read chain range").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

type anchorRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAnchorRepository(db *postgres.DB, logger *logger.Logger) chain.AnchorRepository {
	return &anchorRepository{db: db, logger: logger}
}

func (r *anchorRepository) Create(ctx context.Context, a *chain.Anchor) error {
	query := `
	INSERT INTO integrity_anchors (
		id, company_id, counter_key, doc_number, doc_id, document_hash, created_at, created_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		a.ID,
		a.CompanyID,
		a.CounterKey,
		a.DocNumber,
		a.DocID,
		a.DocumentHash,
		a.CreatedAt,
		a.CreatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to append anchor").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *anchorRepository) Get(ctx context.Context, companyID string, key types.CounterKey, docNumber int64) (*chain.Anchor, error) {
	query := `
	SELECT id, company_id, counter_key, doc_number, doc_id, document_hash, created_at, created_by
	FROM integrity_anchors
	WHERE company_id = $1 AND counter_key = $2 AND doc_number = $3
	`

	var a chain.Anchor
	err := r.db.GetQuerier(ctx).GetContext(ctx, &a, query, companyID, key, docNumber)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("anchor not found").
			WithHintf("No anchor at position %d", docNumber).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get anchor").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}
