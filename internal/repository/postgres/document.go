package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/chainvoice/chainvoice/internal/domain/document"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
	"github.com/chainvoice/chainvoice/internal/types"
)

type documentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDocumentRepository(db *postgres.DB, logger *logger.Logger) document.Repository {
	return &documentRepository{db: db, logger: logger}
}

const documentColumns = `
	id, company_id, doc_type, doc_status, sequential_number,
	client_name, client_number, delivery_date, items, discount,
	finalized_at, finalized_by, immutable_snapshot_hash,
	voided_at, voided_by, void_reason,
	status, created_at, updated_at, created_by, updated_by
`

func (r *documentRepository) Create(ctx context.Context, d *document.Document) error {
	query := `
	INSERT INTO documents (` + documentColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	itemsJSON, err := json.Marshal(d.Items)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode line items").
			Mark(ierr.ErrValidation)
	}

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, query,
		d.ID,
		d.CompanyID,
		d.DocType,
		d.DocStatus,
		d.SequentialNumber,
		d.ClientName,
		d.ClientNumber,
		d.DeliveryDate,
		itemsJSON,
		d.Discount,
		d.FinalizedAt,
		d.FinalizedBy,
		d.ImmutableSnapshotHash,
		d.VoidedAt,
		d.VoidedBy,
		d.VoidReason,
		d.Status,
		d.CreatedAt,
		d.UpdatedAt,
		d.CreatedBy,
		d.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create document").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *documentRepository) Get(ctx context.Context, companyID, id string) (*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1 AND id = $2`

	row := r.db.GetQuerier(ctx).QueryRowxContext(ctx, query, companyID, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("document not found").
			WithHintf("Document %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get document").
			Mark(ierr.ErrDatabase)
	}
	return d, nil
}

func (r *documentRepository) List(ctx context.Context, companyID string, filter *document.Filter) ([]*document.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1`
	args := []interface{}{companyID}

	if filter != nil && filter.DocType != nil {
		args = append(args, *filter.DocType)
		query += ` AND doc_type = $2`
	}
	if filter != nil && filter.DocStatus != nil {
		args = append(args, *filter.DocStatus)
		query += ` AND doc_status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.GetQuerier(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list documents").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan document").
				Mark(ierr.ErrDatabase)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate documents").
			Mark(ierr.ErrDatabase)
	}
	return docs, nil
}

func (r *documentRepository) MarkIssued(ctx context.Context, companyID, id string, issuance *document.Issuance) error {
	query := `
	UPDATE documents SET
		doc_status = $1,
		sequential_number = $2,
		finalized_at = $3,
		finalized_by = $4,
		immutable_snapshot_hash = $5,
		updated_at = $3,
		updated_by = $4
	WHERE company_id = $6 AND id = $7
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		types.DocumentStatusIssued,
		issuance.SequentialNumber,
		issuance.FinalizedAt,
		issuance.FinalizedBy,
		issuance.ImmutableSnapshotHash,
		companyID,
		id,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to mark document issued").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("document not found").
			WithHintf("Document %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *documentRepository) MarkVoided(ctx context.Context, companyID, id string, v *document.Void) error {
	query := `
	UPDATE documents SET
		doc_status = $1,
		voided_at = $2,
		voided_by = $3,
		void_reason = $4,
		updated_at = $2,
		updated_by = $3
	WHERE company_id = $5 AND id = $6
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		types.DocumentStatusVoided,
		v.VoidedAt,
		v.VoidedBy,
		v.Reason,
		companyID,
		id,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to void document").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("document not found").
			WithHintf("Document %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func scanDocument(row rowScanner) (*document.Document, error) {
	var d document.Document
	var itemsJSON []byte

	err := row.Scan(
		&d.ID,
		&d.CompanyID,
		&d.DocType,
		&d.DocStatus,
		&d.SequentialNumber,
		&d.ClientName,
		&d.ClientNumber,
		&d.DeliveryDate,
		&itemsJSON,
		&d.Discount,
		&d.FinalizedAt,
		&d.FinalizedBy,
		&d.ImmutableSnapshotHash,
		&d.VoidedAt,
		&d.VoidedBy,
		&d.VoidReason,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.CreatedBy,
		&d.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &d.Items); err != nil {
			return nil, err
		}
	}
	return &d, nil
}
