package service

import (
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/chain"
	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/domain/document"
	"github.com/chainvoice/chainvoice/internal/domain/user"
	"github.com/chainvoice/chainvoice/internal/testutil"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SweepServiceSuite struct {
	testutil.BaseServiceTestSuite
	issuance IssuanceService
	sweep    SweepService
	params   ServiceParams
}

func TestSweepService(t *testing.T) {
	suite.Run(t, new(SweepServiceSuite))
}

func (s *SweepServiceSuite) SetupTest() {
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
	access := NewAccessService(s.params)
	s.issuance = NewIssuanceService(s.params, access)
	s.sweep = NewSweepService(s.params, NewVerificationService(s.params, access))
	s.params.Config.Sweep.Window = MaxVerifyRange
}

func (s *SweepServiceSuite) seedCompany(id string, billing types.BillingStatus) {
	now := time.Now().UTC()
	trialUntil := now.AddDate(0, 0, 14)
	s.NoError(s.params.CompanyRepo.Create(s.GetContext(), &company.Company{
		ID:            id,
		Name:          id,
		BillingStatus: billing,
		TrialUntil:    &trialUntil,
		Modules:       map[string]bool{string(types.ModuleKeyAccounting): true},
		Status:        types.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
	s.NoError(s.params.UserRepo.Create(s.GetContext(), &user.User{
		ID:        "admin_" + id,
		CompanyID: id,
		Role:      types.UserRoleAdmin,
		Email:     id + "@example.com",
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func (s *SweepServiceSuite) seedChain(companyID string, key types.CounterKey, n int) {
	ctx := s.ContextFor("admin_" + companyID)
	delivery := time.Now().UTC().AddDate(0, 0, -1)
	for i := 0; i < n; i++ {
		doc := &document.Document{
			ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
			DocType:      key,
			DocStatus:    types.DocumentStatusDraft,
			ClientName:   "ACME Ltd",
			DeliveryDate: &delivery,
			Items: []document.LineItem{
				{Description: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
			},
			Discount:  decimal.Zero,
			BaseModel: types.GetDefaultBaseModel(ctx, companyID),
		}
		s.NoError(s.params.DocumentRepo.Create(ctx, doc))
		_, err := s.issuance.Issue(ctx, companyID, doc.ID)
		s.NoError(err)
	}
}

func (s *SweepServiceSuite) TestCleanSweepFindsNoBreaks() {
	s.seedCompany("comp_a", types.BillingStatusActive)
	s.seedCompany("comp_b", types.BillingStatusTrial)
	s.seedChain("comp_a", types.CounterKeyInvoice, 3)
	s.seedChain("comp_b", types.CounterKeyReceipt, 2)

	report, err := s.sweep.Run(s.GetContext())
	s.NoError(err)
	s.Equal(2, report.CompaniesChecked)
	s.Equal(2, report.ChainsChecked)
	s.Equal(int64(5), report.EntriesChecked)
	s.Empty(report.Breaks)
	s.Empty(report.Errors)

	// Counters never written are skipped, not verified
	s.Equal(2*len(types.CounterKeys())-2, report.ChainsSkipped)
}

func (s *SweepServiceSuite) TestBrokenChainIsReportedAndIsolated() {
	s.seedCompany("comp_broken", types.BillingStatusActive)
	s.seedCompany("comp_clean", types.BillingStatusActive)
	s.seedChain("comp_broken", types.CounterKeyInvoice, 4)
	s.seedChain("comp_clean", types.CounterKeyInvoice, 4)

	chainStore := s.GetStores().ChainRepo.(*testutil.InMemoryChainStore)
	s.True(chainStore.TamperEntry("comp_broken", types.CounterKeyInvoice, 2, func(e *chain.Entry) {
		e.Hash = "deadbeef"
	}))

	report, err := s.sweep.Run(s.GetContext())
	s.NoError(err)
	s.Len(report.Breaks, 1)
	s.Equal("comp_broken", report.Breaks[0].CompanyID)
	s.Equal(types.CounterKeyInvoice, report.Breaks[0].CounterKey)
	s.Equal(int64(2), report.Breaks[0].BrokenAt)
	s.Equal(types.BreakReasonHashMismatch, report.Breaks[0].Reason)

	// The clean company was still fully checked
	s.Equal(2, report.ChainsChecked)

	// The break raised an audit event, a tenant notification and a bus event
	auditStore := s.GetStores().AuditRepo.(*testutil.InMemoryAuditStore)
	events := auditStore.EventsOfType(types.AuditTypeIntegrityChainBroken)
	s.Len(events, 1)
	s.Equal("comp_broken", events[0].CompanyID)
	s.Equal(types.SystemUserID, events[0].CreatedBy)

	notifications, err := s.params.NotificationRepo.ListByCompany(s.GetContext(), "comp_broken", 10)
	s.NoError(err)
	s.Len(notifications, 1)
	s.Equal(types.NotificationTypeIntegrityChainBroken, notifications[0].Type)
	s.Equal(types.NotificationSeverityCritical, notifications[0].Severity)
	s.Equal(int64(2), notifications[0].BrokenAt)

	published := s.GetPublisher().EventsOnTopic(types.TopicIntegrityBroken)
	s.Len(published, 1)
	s.Equal("comp_broken", published[0].CompanyID)

	// The clean company got no notifications
	clean, err := s.params.NotificationRepo.ListByCompany(s.GetContext(), "comp_clean", 10)
	s.NoError(err)
	s.Empty(clean)
}

func (s *SweepServiceSuite) TestSuspendedCompaniesAreNotSwept() {
	s.seedCompany("comp_suspended", types.BillingStatusSuspended)
	s.seedCompany("comp_cancelled", types.BillingStatusCancelled)

	report, err := s.sweep.Run(s.GetContext())
	s.NoError(err)
	s.Equal(0, report.CompaniesChecked)
}

func (s *SweepServiceSuite) TestSweepWindowBoundsTheWalk() {
	s.seedCompany("comp_window", types.BillingStatusActive)
	s.seedChain("comp_window", types.CounterKeyInvoice, 10)

	s.params.Config.Sweep.Window = 4
	report, err := s.sweep.Run(s.GetContext())
	s.NoError(err)
	s.Equal(int64(4), report.EntriesChecked)
	s.Empty(report.Breaks)
}

func (s *SweepServiceSuite) TestMissingWindowPredecessorIsReported() {
	s.seedCompany("comp_seed_gap", types.BillingStatusActive)
	s.seedChain("comp_seed_gap", types.CounterKeyInvoice, 10)

	chainStore := s.GetStores().ChainRepo.(*testutil.InMemoryChainStore)
	s.True(chainStore.DeleteEntry("comp_seed_gap", types.CounterKeyInvoice, 6))

	// Window 4 starts the walk at 7, which needs entry 6 as its linkage seed
	s.params.Config.Sweep.Window = 4
	report, err := s.sweep.Run(s.GetContext())
	s.NoError(err)
	s.Len(report.Breaks, 1)
	s.Equal(int64(6), report.Breaks[0].BrokenAt)
	s.Equal(types.BreakReasonMissingPrevForRange, report.Breaks[0].Reason)
}

func (s *SweepServiceSuite) TestBreakOutsideWindowIsNotSeen() {
	s.seedCompany("comp_old_break", types.BillingStatusActive)
	s.seedChain("comp_old_break", types.CounterKeyInvoice, 10)

	chainStore := s.GetStores().ChainRepo.(*testutil.InMemoryChainStore)
	s.True(chainStore.TamperEntry("comp_old_break", types.CounterKeyInvoice, 2, func(e *chain.Entry) {
		e.Hash = "deadbeef"
	}))

	s.params.Config.Sweep.Window = 4
	report, err := s.sweep.Run(s.GetContext())
	s.NoError(err)
	s.Empty(report.Breaks)

	s.params.Config.Sweep.Window = 2000
	report, err = s.sweep.Run(s.GetContext())
	s.NoError(err)
	s.Len(report.Breaks, 1)
	s.Equal(int64(2), report.Breaks[0].BrokenAt)
}
