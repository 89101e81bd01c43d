package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/audit"
	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/domain/notification"
	"github.com/chainvoice/chainvoice/internal/types"
)

// BillingService is the scheduled billing enforcer. It walks every
// non-cancelled company and applies the subscription state machine:
//
//	trial     → grace      when the trial has run out
//	active    → grace      when paid_until has passed
//	grace     → suspended  when the grace window has ended
//	grace     → active     when payment arrived (self-heal)
//	suspended → active     when payment arrived (self-heal)
//
// cancelled is terminal and never touched.
type BillingService interface {
	EnforceAll(ctx context.Context) (*BillingReport, error)
}

// BillingReport aggregates one enforcement run
type BillingReport struct {
	StartedAt        time.Time           `json:"started_at"`
	FinishedAt       time.Time           `json:"finished_at"`
	CompaniesChecked int                 `json:"companies_checked"`
	Transitions      []BillingTransition `json:"transitions,omitempty"`
	Errors           []string            `json:"errors,omitempty"`
}

// BillingTransition is one applied status change
type BillingTransition struct {
	CompanyID string              `json:"company_id"`
	From      types.BillingStatus `json:"from"`
	To        types.BillingStatus `json:"to"`
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) EnforceAll(ctx context.Context) (*BillingReport, error) {
	ctx = types.SetUserID(ctx, types.SystemUserID)

	report := &BillingReport{StartedAt: time.Now().UTC()}

	companies, err := s.CompanyRepo.ListByBillingStatus(ctx, []types.BillingStatus{
		types.BillingStatusTrial,
		types.BillingStatusActive,
		types.BillingStatusGrace,
		types.BillingStatusSuspended,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, comp := range companies {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.CompaniesChecked++

		next, ok := s.nextStatus(comp, now)
		if !ok {
			continue
		}

		if err := s.transition(ctx, comp, next, now); err != nil {
			s.Logger.Errorw("billing transition failed",
				"error", err,
				"company_id", comp.ID,
				"from", comp.BillingStatus,
				"to", next,
			)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", comp.ID, err))
			continue
		}

		report.Transitions = append(report.Transitions, BillingTransition{
			CompanyID: comp.ID,
			From:      comp.BillingStatus,
			To:        next,
		})
	}

	report.FinishedAt = time.Now().UTC()
	s.Logger.Infow("billing enforcement finished",
		"companies", report.CompaniesChecked,
		"transitions", len(report.Transitions),
		"errors", len(report.Errors),
	)
	return report, nil
}

// nextStatus decides the transition for one company, or ok=false to leave it
func (s *billingService) nextStatus(comp *company.Company, now time.Time) (types.BillingStatus, bool) {
	paid := comp.PaidUntil != nil && comp.PaidUntil.After(now)

	switch comp.BillingStatus {
	case types.BillingStatusTrial:
		if paid {
			return types.BillingStatusActive, true
		}
		if comp.TrialUntil == nil || !comp.TrialUntil.After(now) {
			return types.BillingStatusGrace, true
		}
	case types.BillingStatusActive:
		if comp.PaidUntil != nil && !comp.PaidUntil.After(now) {
			return types.BillingStatusGrace, true
		}
	case types.BillingStatusGrace:
		if paid {
			return types.BillingStatusActive, true
		}
		if end := s.graceEnd(comp); end != nil && !end.After(now) {
			return types.BillingStatusSuspended, true
		}
	case types.BillingStatusSuspended:
		if paid {
			return types.BillingStatusActive, true
		}
	}
	return "", false
}

// graceEnd anchors the grace window on paid_until, falling back to the moment
// the company entered its current status for trial-originated grace
func (s *billingService) graceEnd(comp *company.Company) *time.Time {
	if end := comp.GraceEnd(s.Config.Billing.DefaultGraceDays); end != nil {
		return end
	}
	if comp.BillingStatusChangedAt == nil {
		return nil
	}
	days := comp.GracePeriodDays
	if days <= 0 {
		days = s.Config.Billing.DefaultGraceDays
	}
	end := comp.BillingStatusChangedAt.AddDate(0, 0, days)
	return &end
}

func (s *billingService) transition(ctx context.Context, comp *company.Company, next types.BillingStatus, now time.Time) error {
	err := s.CompanyRepo.UpdateBillingStatus(ctx, comp.ID, &company.BillingStatusUpdate{
		Status:    next,
		ChangedBy: types.SystemUserID,
		ChangedAt: now,
	})
	if err != nil {
		return err
	}

	auditCtx := map[string]any{
		"from": string(comp.BillingStatus),
		"to":   string(next),
	}
	if comp.PaidUntil != nil {
		auditCtx["paid_until"] = comp.PaidUntil.Format(time.RFC3339)
	}
	if end := s.graceEnd(comp); end != nil {
		auditCtx["grace_until"] = end.Format(time.RFC3339)
	}
	event := audit.NewEvent(comp.ID, types.ModuleKeyBilling, types.AuditTypeBillingStatusChanged).
		WithEntity("companies", comp.ID).
		WithActor(types.SystemUserID).
		WithContext(auditCtx)
	if err := s.AuditRepo.Create(ctx, event); err != nil {
		s.Logger.Errorw("failed to record billing audit event", "error", err, "company_id", comp.ID)
	}

	s.notifyTransition(ctx, comp, next, now)

	if err := s.EventPublisher.Publish(ctx, types.TopicBillingTransitioned, comp.ID, &BillingTransition{
		CompanyID: comp.ID,
		From:      comp.BillingStatus,
		To:        next,
	}); err != nil {
		s.Logger.Errorw("failed to publish billing event", "error", err, "company_id", comp.ID)
	}
	return nil
}

func (s *billingService) notifyTransition(ctx context.Context, comp *company.Company, next types.BillingStatus, now time.Time) {
	var n *notification.Notification
	switch next {
	case types.BillingStatusGrace:
		n = &notification.Notification{
			Type:     types.NotificationTypeBillingGrace,
			Title:    "Subscription payment overdue",
			Body:     "Your subscription has entered its grace period. Renew to avoid suspension.",
			Severity: types.NotificationSeverityWarning,
		}
	case types.BillingStatusSuspended:
		n = &notification.Notification{
			Type:     types.NotificationTypeBillingSuspended,
			Title:    "Subscription suspended",
			Body:     "Your subscription has been suspended. Issuing documents is disabled until payment.",
			Severity: types.NotificationSeverityCritical,
		}
	default:
		return
	}

	n.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION)
	n.CompanyID = comp.ID
	n.CreatedAt = now
	if err := s.NotificationRepo.Create(ctx, n); err != nil {
		s.Logger.Errorw("failed to create billing notification", "error", err, "company_id", comp.ID)
	}
}
