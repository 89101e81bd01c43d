package postgres

import (
	"context"
	"encoding/json"

	"github.com/chainvoice/chainvoice/internal/domain/audit"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
)

type auditRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAuditRepository(db *postgres.DB, logger *logger.Logger) audit.Repository {
	return &auditRepository{db: db, logger: logger}
}

func (r *auditRepository) Create(ctx context.Context, e *audit.Event) error {
	query := `
	INSERT INTO audit_events (
		id, company_id, module_key, type, entity_collection, entity_doc_id,
		created_by, created_at, context
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	ctxJSON, err := json.Marshal(e.Context)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode audit context").
			Mark(ierr.ErrValidation)
	}

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, query,
		e.ID,
		e.CompanyID,
		e.ModuleKey,
		e.Type,
		e.EntityCollection,
		e.EntityDocID,
		e.CreatedBy,
		e.CreatedAt,
		ctxJSON,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record audit event").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *auditRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]*audit.Event, error) {
	query := `
	SELECT id, company_id, module_key, type, entity_collection, entity_doc_id,
		created_by, created_at, context
	FROM audit_events
	WHERE company_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	rows, err := r.db.GetQuerier(ctx).QueryxContext(ctx, query, companyID, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit events").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var events []*audit.Event
	for rows.Next() {
		var e audit.Event
		var ctxJSON []byte
		err := rows.Scan(
			&e.ID,
			&e.CompanyID,
			&e.ModuleKey,
			&e.Type,
			&e.EntityCollection,
			&e.EntityDocID,
			&e.CreatedBy,
			&e.CreatedAt,
			&ctxJSON,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan audit event").
				Mark(ierr.ErrDatabase)
		}
		if len(ctxJSON) > 0 {
			if err := json.Unmarshal(ctxJSON, &e.Context); err != nil {
				return nil, ierr.WithError(err).
					WithHint("Failed to decode audit context").
					Mark(ierr.ErrDatabase)
			}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate audit events").
			Mark(ierr.ErrDatabase)
	}
	return events, nil
}
