package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/audit"
	"github.com/chainvoice/chainvoice/internal/domain/notification"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
)

// SweepService is the scheduled full-integrity check. It walks the trailing
// window of every counter of every billable company and raises an alert for
// each broken chain. A break in one company never stops the sweep.
type SweepService interface {
	Run(ctx context.Context) (*SweepReport, error)
}

// SweepReport aggregates one sweep run
type SweepReport struct {
	StartedAt        time.Time    `json:"started_at"`
	FinishedAt       time.Time    `json:"finished_at"`
	CompaniesChecked int          `json:"companies_checked"`
	ChainsChecked    int          `json:"chains_checked"`
	ChainsSkipped    int          `json:"chains_skipped"`
	EntriesChecked   int64        `json:"entries_checked"`
	Breaks           []SweepBreak `json:"breaks,omitempty"`
	Errors           []string     `json:"errors,omitempty"`
}

// SweepBreak is one broken chain found during a sweep
type SweepBreak struct {
	CompanyID  string            `json:"company_id"`
	CounterKey types.CounterKey  `json:"counter_key"`
	BrokenAt   int64             `json:"broken_at"`
	Reason     types.BreakReason `json:"reason"`
}

type sweepService struct {
	ServiceParams
	verification VerificationService
}

func NewSweepService(params ServiceParams, verification VerificationService) SweepService {
	return &sweepService{
		ServiceParams: params,
		verification:  verification,
	}
}

func (s *sweepService) Run(ctx context.Context) (*SweepReport, error) {
	ctx = types.SetUserID(ctx, types.SystemUserID)

	report := &SweepReport{StartedAt: time.Now().UTC()}

	companies, err := s.CompanyRepo.ListByBillingStatus(ctx, []types.BillingStatus{
		types.BillingStatusTrial,
		types.BillingStatusActive,
		types.BillingStatusGrace,
	})
	if err != nil {
		return nil, err
	}

	window := s.Config.Sweep.Window
	if window <= 0 || window > MaxVerifyRange {
		window = MaxVerifyRange
	}

	for _, comp := range companies {
		report.CompaniesChecked++

		for _, key := range types.CounterKeys() {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			ctr, err := s.CounterRepo.Get(ctx, comp.ID, key)
			if ierr.IsNotFound(err) {
				report.ChainsSkipped++
				continue
			}
			if err != nil {
				s.recordSweepError(report, comp.ID, key, err)
				continue
			}
			if ctr.LastNumber <= 0 {
				report.ChainsSkipped++
				continue
			}

			to := ctr.LastNumber
			from := to - window + 1
			if from < 1 {
				from = 1
			}

			result, err := s.verification.VerifyRange(ctx, comp.ID, key, from, to)
			if err != nil {
				s.recordSweepError(report, comp.ID, key, err)
				continue
			}

			report.ChainsChecked++
			report.EntriesChecked += result.Checked

			if !result.OK {
				report.Breaks = append(report.Breaks, SweepBreak{
					CompanyID:  comp.ID,
					CounterKey: key,
					BrokenAt:   result.FirstBrokenAt,
					Reason:     result.Reason,
				})
				s.raiseBreakAlert(ctx, comp.ID, result)
			}
		}
	}

	report.FinishedAt = time.Now().UTC()
	s.Logger.Infow("integrity sweep finished",
		"companies", report.CompaniesChecked,
		"chains_checked", report.ChainsChecked,
		"chains_skipped", report.ChainsSkipped,
		"entries_checked", report.EntriesChecked,
		"breaks", len(report.Breaks),
		"errors", len(report.Errors),
	)
	return report, nil
}

func (s *sweepService) recordSweepError(report *SweepReport, companyID string, key types.CounterKey, err error) {
	s.Logger.Errorw("sweep check failed",
		"error", err,
		"company_id", companyID,
		"counter_key", key,
	)
	report.Errors = append(report.Errors, fmt.Sprintf("%s/%s: %v", companyID, key, err))
}

// raiseBreakAlert records the break in the audit trail, notifies the tenant
// and emits the domain event. All three are best-effort.
func (s *sweepService) raiseBreakAlert(ctx context.Context, companyID string, result *VerificationResult) {
	s.Logger.Errorw("integrity chain broken",
		"company_id", companyID,
		"counter_key", result.CounterKey,
		"broken_at", result.FirstBrokenAt,
		"reason", result.Reason,
	)

	event := audit.NewEvent(companyID, types.ModuleKeyAccounting, types.AuditTypeIntegrityChainBroken).
		WithEntity("chain_entries", fmt.Sprintf("%s_%d", result.CounterKey, result.FirstBrokenAt)).
		WithActor(types.SystemUserID).
		WithContext(map[string]any{
			"counter_key": string(result.CounterKey),
			"broken_at":   result.FirstBrokenAt,
			"reason":      string(result.Reason),
			"expected":    result.Expected,
			"actual":      result.Actual,
		})
	if err := s.AuditRepo.Create(ctx, event); err != nil {
		s.Logger.Errorw("failed to record break audit event", "error", err, "company_id", companyID)
	}

	n := &notification.Notification{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		CompanyID:  companyID,
		Type:       types.NotificationTypeIntegrityChainBroken,
		Title:      "Ledger integrity check failed",
		Body:       fmt.Sprintf("The %s chain is broken at position %d (%s)", result.CounterKey, result.FirstBrokenAt, result.Reason),
		Severity:   types.NotificationSeverityCritical,
		CounterKey: result.CounterKey,
		BrokenAt:   result.FirstBrokenAt,
		Reason:     result.Reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.NotificationRepo.Create(ctx, n); err != nil {
		s.Logger.Errorw("failed to create break notification", "error", err, "company_id", companyID)
	}

	if err := s.EventPublisher.Publish(ctx, types.TopicIntegrityBroken, companyID, result); err != nil {
		s.Logger.Errorw("failed to publish break event", "error", err, "company_id", companyID)
	}
}
