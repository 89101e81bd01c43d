package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/company"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/lib/pq"
)

type companyRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCompanyRepository(db *postgres.DB, logger *logger.Logger) company.Repository {
	return &companyRepository{db: db, logger: logger}
}

const companyColumns = `
	id, name, billing_status, trial_until, paid_until, grace_period_days,
	billing_status_changed_at, billing_status_changed_by, modules,
	accounting_locked_until, status, created_at, updated_at
`

func (r *companyRepository) Create(ctx context.Context, c *company.Company) error {
	query := `
	INSERT INTO companies (` + companyColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	modulesJSON, err := json.Marshal(c.Modules)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode company modules").
			Mark(ierr.ErrValidation)
	}

	_, err = r.db.GetQuerier(ctx).ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.BillingStatus,
		c.TrialUntil,
		c.PaidUntil,
		c.GracePeriodDays,
		c.BillingStatusChangedAt,
		c.BillingStatusChangedBy,
		modulesJSON,
		c.AccountingLockedUntil,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create company").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *companyRepository) Get(ctx context.Context, id string) (*company.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	row := r.db.GetQuerier(ctx).QueryRowxContext(ctx, query, id)
	c, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("company not found").
			WithHintf("Company %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get company").
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}

func (r *companyRepository) ListByBillingStatus(ctx context.Context, statuses []types.BillingStatus) ([]*company.Company, error) {
	query := `
	SELECT ` + companyColumns + `
	FROM companies
	WHERE billing_status = ANY($1) AND status = $2
	ORDER BY id
	`

	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}

	rows, err := r.db.GetQuerier(ctx).QueryxContext(ctx, query, pq.Array(raw), types.StatusActive)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list companies").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var companies []*company.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan company").
				Mark(ierr.ErrDatabase)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate companies").
			Mark(ierr.ErrDatabase)
	}
	return companies, nil
}

func (r *companyRepository) UpdateBillingStatus(ctx context.Context, id string, update *company.BillingStatusUpdate) error {
	query := `
	UPDATE companies SET
		billing_status = $1,
		paid_until = COALESCE($2, paid_until),
		billing_status_changed_at = $3,
		billing_status_changed_by = $4,
		updated_at = $5
	WHERE id = $6
	`

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		update.Status,
		update.PaidUntil,
		update.ChangedAt,
		update.ChangedBy,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update billing status").
			Mark(ierr.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ierr.NewError("company not found").
			WithHintf("Company %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row rowScanner) (*company.Company, error) {
	var c company.Company
	var modulesJSON []byte

	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.BillingStatus,
		&c.TrialUntil,
		&c.PaidUntil,
		&c.GracePeriodDays,
		&c.BillingStatusChangedAt,
		&c.BillingStatusChangedBy,
		&modulesJSON,
		&c.AccountingLockedUntil,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(modulesJSON) > 0 {
		if err := json.Unmarshal(modulesJSON, &c.Modules); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
