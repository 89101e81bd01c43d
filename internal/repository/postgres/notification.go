package postgres

import (
	"context"

	"github.com/chainvoice/chainvoice/internal/domain/notification"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/logger"
	"github.com/chainvoice/chainvoice/internal/postgres"
)

type notificationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewNotificationRepository(db *postgres.DB, logger *logger.Logger) notification.Repository {
	return &notificationRepository{db: db, logger: logger}
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
	INSERT INTO notifications (
		id, company_id, type, title, body, severity,
		counter_key, broken_at, reason, read, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.GetQuerier(ctx).ExecContext(ctx, query,
		n.ID,
		n.CompanyID,
		n.Type,
		n.Title,
		n.Body,
		n.Severity,
		n.CounterKey,
		n.BrokenAt,
		n.Reason,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create notification").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *notificationRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]*notification.Notification, error) {
	query := `
	SELECT id, company_id, type, title, body, severity,
		counter_key, broken_at, reason, read, created_at
	FROM notifications
	WHERE company_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	var notifications []*notification.Notification
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &notifications, query, companyID, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list notifications").
			Mark(ierr.ErrDatabase)
	}
	return notifications, nil
}
