package postgres

import (
	"context"
	"database/sql"

	"github.com/chainvoice/chainvoice/internal/domain/counter"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
	"github.com/chainvoice/chainvoice/internal/types"
)

type counterRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCounterRepository(db *postgres.DB, logger *logger.Logger) counter.Repository {
	return &counterRepository{db: db, logger: logger}
}

func (r *counterRepository) Get(ctx context.Context, companyID string, key types.CounterKey) (*counter.Counter, error) {
	query := `
	SELECT company_id, counter_key, last_number, updated_at, updated_by
	FROM counters
	WHERE company_id = $1 AND counter_key = $2
	`
	return r.get(ctx, query, companyID, key)
}

// GetForUpdate locks the counter row for the remainder of the ambient
// transaction. Concurrent allocation units for the same (company, key) queue
// on this lock; units for other counters or companies are unaffected.
func (r *counterRepository) GetForUpdate(ctx context.Context, companyID string, key types.CounterKey) (*counter.Counter, error) {
	query := `
	SELECT company_id, counter_key, last_number, updated_at, updated_by
	FROM counters
	WHERE company_id = $1 AND counter_key = $2
	FOR UPDATE
	`
	return r.get(ctx, query, companyID, key)
}

func (r *counterRepository) get(ctx context.Context, query, companyID string, key types.CounterKey) (*counter.Counter, error) {
	var c counter.Counter
	err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query, companyID, key)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("counter not found").
			WithHintf("No counter exists yet for %s", key).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get counter").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *counterRepository) Upsert(ctx context.Context, c *counter.Counter) error {
	query := `
	INSERT INTO counters (company_id, counter_key, last_number, updated_at, updated_by)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (company_id, counter_key) DO UPDATE SET
		last_number = EXCLUDED.last_number,
		updated_at = EXCLUDED.updated_at,
		updated_by = EXCLUDED.updated_by
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		c.CompanyID,
		c.Key,
		c.LastNumber,
		c.UpdatedAt,
		c.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to upsert counter").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
