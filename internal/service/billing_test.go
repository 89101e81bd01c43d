package service

import (
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/testutil"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	billing BillingService
	params  ServiceParams
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		CompanyRepo:      stores.CompanyRepo,
		UserRepo:         stores.UserRepo,
		DocumentRepo:     stores.DocumentRepo,
		CounterRepo:      stores.CounterRepo,
		ChainRepo:        stores.ChainRepo,
		AnchorRepo:       stores.AnchorRepo,
		AuditRepo:        stores.AuditRepo,
		NotificationRepo: stores.NotificationRepo,
		EventPublisher:   s.GetPublisher(),
	}
	s.billing = NewBillingService(s.params)
}

func (s *BillingServiceSuite) seedCompany(id string, c company.Company) {
	now := time.Now().UTC()
	c.ID = id
	c.Name = id
	c.Status = types.StatusActive
	c.CreatedAt = now
	c.UpdatedAt = now
	s.NoError(s.params.CompanyRepo.Create(s.GetContext(), &c))
}

func (s *BillingServiceSuite) getCompany(id string) *company.Company {
	c, err := s.params.CompanyRepo.Get(s.GetContext(), id)
	s.NoError(err)
	return c
}

func (s *BillingServiceSuite) daysAgo(n int) *time.Time {
	t := time.Now().UTC().AddDate(0, 0, -n)
	return &t
}

func (s *BillingServiceSuite) daysAhead(n int) *time.Time {
	t := time.Now().UTC().AddDate(0, 0, n)
	return &t
}

func (s *BillingServiceSuite) TestExpiredTrialEntersGrace() {
	s.seedCompany("comp_trial", company.Company{
		BillingStatus: types.BillingStatusTrial,
		TrialUntil:    s.daysAgo(1),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Equal(1, report.CompaniesChecked)
	s.Len(report.Transitions, 1)
	s.Equal(types.BillingStatusTrial, report.Transitions[0].From)
	s.Equal(types.BillingStatusGrace, report.Transitions[0].To)

	comp := s.getCompany("comp_trial")
	s.Equal(types.BillingStatusGrace, comp.BillingStatus)
	s.Equal(types.SystemUserID, comp.BillingStatusChangedBy)
	s.NotNil(comp.BillingStatusChangedAt)
}

func (s *BillingServiceSuite) TestRunningTrialIsLeftAlone() {
	s.seedCompany("comp_trial", company.Company{
		BillingStatus: types.BillingStatusTrial,
		TrialUntil:    s.daysAhead(7),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Empty(report.Transitions)
	s.Equal(types.BillingStatusTrial, s.getCompany("comp_trial").BillingStatus)
}

func (s *BillingServiceSuite) TestPaidTrialActivates() {
	s.seedCompany("comp_trial", company.Company{
		BillingStatus: types.BillingStatusTrial,
		TrialUntil:    s.daysAhead(7),
		PaidUntil:     s.daysAhead(30),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Len(report.Transitions, 1)
	s.Equal(types.BillingStatusActive, report.Transitions[0].To)
	s.Equal(types.BillingStatusActive, s.getCompany("comp_trial").BillingStatus)
}

func (s *BillingServiceSuite) TestLapsedActiveEntersGrace() {
	s.seedCompany("comp_active", company.Company{
		BillingStatus: types.BillingStatusActive,
		PaidUntil:     s.daysAgo(1),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Len(report.Transitions, 1)
	s.Equal(types.BillingStatusGrace, report.Transitions[0].To)

	notifications, err := s.params.NotificationRepo.ListByCompany(s.GetContext(), "comp_active", 10)
	s.NoError(err)
	s.Len(notifications, 1)
	s.Equal(types.NotificationTypeBillingGrace, notifications[0].Type)
	s.Equal(types.NotificationSeverityWarning, notifications[0].Severity)
}

func (s *BillingServiceSuite) TestPaidActiveIsLeftAlone() {
	s.seedCompany("comp_active", company.Company{
		BillingStatus: types.BillingStatusActive,
		PaidUntil:     s.daysAhead(30),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Empty(report.Transitions)
}

func (s *BillingServiceSuite) TestExhaustedGraceSuspends() {
	s.seedCompany("comp_grace", company.Company{
		BillingStatus:   types.BillingStatusGrace,
		PaidUntil:       s.daysAgo(10),
		GracePeriodDays: 7,
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Len(report.Transitions, 1)
	s.Equal(types.BillingStatusSuspended, report.Transitions[0].To)
	s.Equal(types.BillingStatusSuspended, s.getCompany("comp_grace").BillingStatus)

	notifications, err := s.params.NotificationRepo.ListByCompany(s.GetContext(), "comp_grace", 10)
	s.NoError(err)
	s.Len(notifications, 1)
	s.Equal(types.NotificationTypeBillingSuspended, notifications[0].Type)
	s.Equal(types.NotificationSeverityCritical, notifications[0].Severity)
}

func (s *BillingServiceSuite) TestOpenGraceWindowIsLeftAlone() {
	s.seedCompany("comp_grace", company.Company{
		BillingStatus:   types.BillingStatusGrace,
		PaidUntil:       s.daysAgo(2),
		GracePeriodDays: 7,
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Empty(report.Transitions)
	s.Equal(types.BillingStatusGrace, s.getCompany("comp_grace").BillingStatus)
}

func (s *BillingServiceSuite) TestTrialGraceFallsBackToStatusChange() {
	// A company that never paid has no paid_until to anchor the grace window,
	// so the window runs from the moment it entered grace
	s.seedCompany("comp_grace", company.Company{
		BillingStatus:          types.BillingStatusGrace,
		GracePeriodDays:        7,
		BillingStatusChangedAt: s.daysAgo(10),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Len(report.Transitions, 1)
	s.Equal(types.BillingStatusSuspended, report.Transitions[0].To)
}

func (s *BillingServiceSuite) TestPaymentHealsGrace() {
	s.seedCompany("comp_grace", company.Company{
		BillingStatus: types.BillingStatusGrace,
		PaidUntil:     s.daysAhead(30),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Len(report.Transitions, 1)
	s.Equal(types.BillingStatusActive, report.Transitions[0].To)
	s.Equal(types.BillingStatusActive, s.getCompany("comp_grace").BillingStatus)
}

func (s *BillingServiceSuite) TestPaymentHealsSuspension() {
	s.seedCompany("comp_suspended", company.Company{
		BillingStatus: types.BillingStatusSuspended,
		PaidUntil:     s.daysAhead(30),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Len(report.Transitions, 1)
	s.Equal(types.BillingStatusSuspended, report.Transitions[0].From)
	s.Equal(types.BillingStatusActive, report.Transitions[0].To)
}

func (s *BillingServiceSuite) TestUnpaidSuspensionIsLeftAlone() {
	s.seedCompany("comp_suspended", company.Company{
		BillingStatus: types.BillingStatusSuspended,
		PaidUntil:     s.daysAgo(30),
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Empty(report.Transitions)
}

func (s *BillingServiceSuite) TestCancelledIsNeverTouched() {
	s.seedCompany("comp_cancelled", company.Company{
		BillingStatus: types.BillingStatusCancelled,
	})

	report, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)
	s.Equal(0, report.CompaniesChecked)
	s.Equal(types.BillingStatusCancelled, s.getCompany("comp_cancelled").BillingStatus)
}

func (s *BillingServiceSuite) TestTransitionIsRecordedAndPublished() {
	s.seedCompany("comp_audit", company.Company{
		BillingStatus: types.BillingStatusActive,
		PaidUntil:     s.daysAgo(1),
	})

	_, err := s.billing.EnforceAll(s.GetContext())
	s.NoError(err)

	auditStore := s.GetStores().AuditRepo.(*testutil.InMemoryAuditStore)
	events := auditStore.EventsOfType(types.AuditTypeBillingStatusChanged)
	s.Len(events, 1)
	s.Equal("comp_audit", events[0].CompanyID)
	s.Equal(types.SystemUserID, events[0].CreatedBy)
	s.Equal("active", events[0].Context["from"])
	s.Equal("grace", events[0].Context["to"])

	published := s.GetPublisher().EventsOnTopic(types.TopicBillingTransitioned)
	s.Len(published, 1)
	s.Equal("comp_audit", published[0].CompanyID)
}
