package service

import (
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/chain"
	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/domain/document"
	"github.com/chainvoice/chainvoice/internal/domain/user"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/testutil"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type VerificationServiceSuite struct {
	testutil.BaseServiceTestSuite
	issuance     IssuanceService
	verification VerificationService
	params       ServiceParams
	companyID    string
}

func TestVerificationService(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
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
	s.verification = NewVerificationService(s.params, access)

	s.companyID = "comp_verify"
	now := time.Now().UTC()
	s.NoError(s.params.CompanyRepo.Create(s.GetContext(), &company.Company{
		ID:            s.companyID,
		Name:          "Verify Co",
		BillingStatus: types.BillingStatusActive,
		Modules:       map[string]bool{string(types.ModuleKeyAccounting): true},
		Status:        types.StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
	s.NoError(s.params.UserRepo.Create(s.GetContext(), &user.User{
		ID:        types.DefaultUserID,
		CompanyID: s.companyID,
		Role:      types.UserRoleAdmin,
		Email:     "admin@example.com",
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

// seedChain issues n documents on the invoice counter
func (s *VerificationServiceSuite) seedChain(n int) {
	delivery := time.Now().UTC().AddDate(0, 0, -1)
	for i := 0; i < n; i++ {
		doc := &document.Document{
			ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
			DocType:      types.CounterKeyInvoice,
			DocStatus:    types.DocumentStatusDraft,
			ClientName:   "ACME Ltd",
			DeliveryDate: &delivery,
			Items: []document.LineItem{
				{Description: "Widget", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
			},
			Discount:  decimal.Zero,
			BaseModel: types.GetDefaultBaseModel(s.GetContext(), s.companyID),
		}
		s.NoError(s.params.DocumentRepo.Create(s.GetContext(), doc))
		_, err := s.issuance.Issue(s.GetContext(), s.companyID, doc.ID)
		s.NoError(err)
	}
}

func (s *VerificationServiceSuite) chainStore() *testutil.InMemoryChainStore {
	return s.GetStores().ChainRepo.(*testutil.InMemoryChainStore)
}

func (s *VerificationServiceSuite) TestIntactChainVerifies() {
	s.seedChain(5)

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, 5)
	s.NoError(err)
	s.True(result.OK)
	s.Equal(int64(5), result.Checked)
	s.Equal(int64(5), result.CheckedUntil)
	s.Empty(result.Reason)

	last, err := s.params.ChainRepo.Get(s.GetContext(), s.companyID, types.CounterKeyInvoice, 5)
	s.NoError(err)
	s.Require().NotNil(result.Last)
	s.Equal(int64(5), result.Last.DocNumber)
	s.Equal(last.Hash, result.Last.Hash)
}

func (s *VerificationServiceSuite) TestSubRangeVerifies() {
	s.seedChain(5)

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 2, 4)
	s.NoError(err)
	s.True(result.OK)
	s.Equal(int64(3), result.Checked)
	s.Equal(int64(4), result.CheckedUntil)
}

func (s *VerificationServiceSuite) TestTamperedHashIsDetected() {
	s.seedChain(5)
	s.True(s.chainStore().TamperEntry(s.companyID, types.CounterKeyInvoice, 3, func(e *chain.Entry) {
		e.Hash = "deadbeef"
	}))

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, 5)
	s.NoError(err)
	s.False(result.OK)
	s.Equal(int64(3), result.FirstBrokenAt)
	s.Equal(types.BreakReasonHashMismatch, result.Reason)
	s.Equal("deadbeef", result.Actual)
	s.NotEqual(result.Expected, result.Actual)
	// Positions before the break were verified
	s.Equal(int64(2), result.Checked)
	s.Equal(int64(2), result.CheckedUntil)
}

func (s *VerificationServiceSuite) TestTamperedFieldIsDetected() {
	s.seedChain(5)
	s.True(s.chainStore().TamperEntry(s.companyID, types.CounterKeyInvoice, 3, func(e *chain.Entry) {
		e.DocID = "doc_swapped"
	}))

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, 5)
	s.NoError(err)
	s.False(result.OK)
	s.Equal(int64(3), result.FirstBrokenAt)
	s.Equal(types.BreakReasonHashMismatch, result.Reason)
}

func (s *VerificationServiceSuite) TestBrokenLinkIsDetected() {
	s.seedChain(5)
	s.True(s.chainStore().TamperEntry(s.companyID, types.CounterKeyInvoice, 3, func(e *chain.Entry) {
		e.PrevHash = "deadbeef"
	}))

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, 5)
	s.NoError(err)
	s.False(result.OK)
	s.Equal(int64(3), result.FirstBrokenAt)
	s.Equal(types.BreakReasonPrevHashMismatch, result.Reason)
	s.Equal("deadbeef", result.Actual)
}

func (s *VerificationServiceSuite) TestMissingEntryIsDetected() {
	s.seedChain(5)
	s.True(s.chainStore().DeleteEntry(s.companyID, types.CounterKeyInvoice, 3))

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, 5)
	s.NoError(err)
	s.False(result.OK)
	s.Equal(int64(3), result.FirstBrokenAt)
	s.Equal(types.BreakReasonMissingEntry, result.Reason)
}

func (s *VerificationServiceSuite) TestMalformedEntryIsDetected() {
	s.seedChain(3)
	s.True(s.chainStore().TamperEntry(s.companyID, types.CounterKeyInvoice, 2, func(e *chain.Entry) {
		e.DocID = ""
		e.Hash = ""
	}))

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, 3)
	s.NoError(err)
	s.False(result.OK)
	s.Equal(int64(2), result.FirstBrokenAt)
	s.Equal(types.BreakReasonSchemaInvalid, result.Reason)
}

func (s *VerificationServiceSuite) TestMissingRangePredecessor() {
	s.seedChain(5)

	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 10, 12)
	s.NoError(err)
	s.False(result.OK)
	s.Equal(int64(9), result.FirstBrokenAt)
	s.Equal(types.BreakReasonMissingPrevForRange, result.Reason)
	s.Equal(int64(0), result.Checked)
	s.Equal(int64(9), result.CheckedUntil)
}

func (s *VerificationServiceSuite) TestBreakAtRangeStart() {
	s.seedChain(5)
	s.True(s.chainStore().TamperEntry(s.companyID, types.CounterKeyInvoice, 2, func(e *chain.Entry) {
		e.Hash = "deadbeef"
	}))

	// The break sits on the very first walked position: nothing verified, and
	// CheckedUntil points just before the range
	result, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 2, 4)
	s.NoError(err)
	s.False(result.OK)
	s.Equal(int64(2), result.FirstBrokenAt)
	s.Equal(types.BreakReasonHashMismatch, result.Reason)
	s.Equal(int64(0), result.Checked)
	s.Equal(int64(1), result.CheckedUntil)
	s.Nil(result.Last)
}

func (s *VerificationServiceSuite) TestRangeValidation() {
	s.seedChain(1)

	_, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 0, 5)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 5, 4)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, MaxVerifyRange+1)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.verification.Verify(s.GetContext(), s.companyID, "bogus", 1, 5)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *VerificationServiceSuite) TestDispatcherCannotVerify() {
	now := time.Now().UTC()
	s.NoError(s.params.UserRepo.Create(s.GetContext(), &user.User{
		ID:        "user_dispatcher",
		CompanyID: s.companyID,
		Role:      types.UserRoleDispatcher,
		Email:     "dispatcher@example.com",
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	s.seedChain(1)

	_, err := s.verification.Verify(s.ContextFor("user_dispatcher"), s.companyID, types.CounterKeyInvoice, 1, 1)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *VerificationServiceSuite) TestVerificationIsReadOnly() {
	s.seedChain(3)
	s.True(s.chainStore().TamperEntry(s.companyID, types.CounterKeyInvoice, 2, func(e *chain.Entry) {
		e.Hash = "deadbeef"
	}))

	_, err := s.verification.Verify(s.GetContext(), s.companyID, types.CounterKeyInvoice, 1, 3)
	s.NoError(err)

	// The tampered entry is still there untouched; nothing was repaired
	entry, err := s.params.ChainRepo.Get(s.GetContext(), s.companyID, types.CounterKeyInvoice, 2)
	s.NoError(err)
	s.Equal("deadbeef", entry.Hash)
}
