package service

import (
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/api/dto"
	"github.com/chainvoice/chainvoice/internal/domain/company"
	"github.com/chainvoice/chainvoice/internal/domain/user"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/testutil"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DocumentServiceSuite struct {
	testutil.BaseServiceTestSuite
	documents DocumentService
	issuance  IssuanceService
	params    ServiceParams
	companyID string
}

func TestDocumentService(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
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
	s.documents = NewDocumentService(s.params, access)
	s.issuance = NewIssuanceService(s.params, access)

	s.companyID = "comp_docs"
	now := time.Now().UTC()
	s.NoError(s.params.CompanyRepo.Create(s.GetContext(), &company.Company{
		ID:            s.companyID,
		Name:          "Docs Co",
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

func (s *DocumentServiceSuite) draftRequest(docType types.CounterKey) *dto.CreateDocumentRequest {
	delivery := time.Now().UTC().AddDate(0, 0, -1)
	return &dto.CreateDocumentRequest{
		DocType:      docType,
		ClientName:   "ACME Ltd",
		DeliveryDate: &delivery,
		Items: []dto.LineItem{
			{Description: "Widget", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25)},
		},
		Discount: decimal.Zero,
	}
}

func (s *DocumentServiceSuite) TestCreateDraft() {
	resp, err := s.documents.CreateDraft(s.GetContext(), s.companyID, s.draftRequest(types.CounterKeyInvoice))
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal(types.DocumentStatusDraft, resp.DocStatus)
	s.Equal(int64(0), resp.SequentialNumber)

	stored, err := s.documents.Get(s.GetContext(), s.companyID, resp.ID)
	s.NoError(err)
	s.Equal("ACME Ltd", stored.ClientName)
	s.Len(stored.Items, 1)
}

func (s *DocumentServiceSuite) TestCreateDraftValidation() {
	req := s.draftRequest(types.CounterKeyInvoice)
	req.ClientName = ""
	_, err := s.documents.CreateDraft(s.GetContext(), s.companyID, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.draftRequest(types.CounterKeyInvoice)
	req.Items = nil
	_, err = s.documents.CreateDraft(s.GetContext(), s.companyID, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.draftRequest("bogus")
	_, err = s.documents.CreateDraft(s.GetContext(), s.companyID, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.draftRequest(types.CounterKeyInvoice)
	req.Discount = decimal.NewFromInt(-5)
	_, err = s.documents.CreateDraft(s.GetContext(), s.companyID, req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *DocumentServiceSuite) TestViewerCannotCreateDraft() {
	now := time.Now().UTC()
	s.NoError(s.params.UserRepo.Create(s.GetContext(), &user.User{
		ID:        "user_viewer",
		CompanyID: s.companyID,
		Role:      types.UserRoleViewer,
		Email:     "viewer@example.com",
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	_, err := s.documents.CreateDraft(s.ContextFor("user_viewer"), s.companyID, s.draftRequest(types.CounterKeyInvoice))
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *DocumentServiceSuite) TestGetUnknownDocument() {
	_, err := s.documents.Get(s.GetContext(), s.companyID, "doc_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *DocumentServiceSuite) TestListFilters() {
	for i := 0; i < 3; i++ {
		_, err := s.documents.CreateDraft(s.GetContext(), s.companyID, s.draftRequest(types.CounterKeyInvoice))
		s.NoError(err)
	}
	receipt, err := s.documents.CreateDraft(s.GetContext(), s.companyID, s.draftRequest(types.CounterKeyReceipt))
	s.NoError(err)
	_, err = s.issuance.Issue(s.GetContext(), s.companyID, receipt.ID)
	s.NoError(err)

	all, err := s.documents.List(s.GetContext(), s.companyID, &dto.ListDocumentsRequest{})
	s.NoError(err)
	s.Equal(4, all.Total)

	invoices, err := s.documents.List(s.GetContext(), s.companyID, &dto.ListDocumentsRequest{
		DocType: lo.ToPtr(types.CounterKeyInvoice),
	})
	s.NoError(err)
	s.Equal(3, invoices.Total)

	issued, err := s.documents.List(s.GetContext(), s.companyID, &dto.ListDocumentsRequest{
		DocStatus: lo.ToPtr(types.DocumentStatusIssued),
	})
	s.NoError(err)
	s.Equal(1, issued.Total)
	s.Equal(receipt.ID, issued.Items[0].ID)

	limited, err := s.documents.List(s.GetContext(), s.companyID, &dto.ListDocumentsRequest{Limit: 2})
	s.NoError(err)
	s.Equal(2, limited.Total)
}

func (s *DocumentServiceSuite) TestListValidation() {
	_, err := s.documents.List(s.GetContext(), s.companyID, &dto.ListDocumentsRequest{Limit: 2000})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *DocumentServiceSuite) TestVoidIssuedDocument() {
	draft, err := s.documents.CreateDraft(s.GetContext(), s.companyID, s.draftRequest(types.CounterKeyInvoice))
	s.NoError(err)
	issued, err := s.issuance.Issue(s.GetContext(), s.companyID, draft.ID)
	s.NoError(err)

	resp, err := s.documents.Void(s.GetContext(), s.companyID, draft.ID, &dto.VoidDocumentRequest{
		Reason: "billing error",
	})
	s.NoError(err)
	s.Equal(types.DocumentStatusVoided, resp.DocStatus)
	s.Equal("billing error", resp.VoidReason)
	s.Equal(types.DefaultUserID, resp.VoidedBy)
	s.NotNil(resp.VoidedAt)

	// The sequential number and the chain entry survive the void
	s.Equal(issued.DocNumber, resp.SequentialNumber)
	entry, err := s.params.ChainRepo.Get(s.GetContext(), s.companyID, types.CounterKeyInvoice, issued.DocNumber)
	s.NoError(err)
	s.Equal(draft.ID, entry.DocID)
}

func (s *DocumentServiceSuite) TestVoidRequiresReason() {
	draft, err := s.documents.CreateDraft(s.GetContext(), s.companyID, s.draftRequest(types.CounterKeyInvoice))
	s.NoError(err)
	_, err = s.issuance.Issue(s.GetContext(), s.companyID, draft.ID)
	s.NoError(err)

	_, err = s.documents.Void(s.GetContext(), s.companyID, draft.ID, &dto.VoidDocumentRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *DocumentServiceSuite) TestVoidRejectsDraft() {
	draft, err := s.documents.CreateDraft(s.GetContext(), s.companyID, s.draftRequest(types.CounterKeyInvoice))
	s.NoError(err)

	_, err = s.documents.Void(s.GetContext(), s.companyID, draft.ID, &dto.VoidDocumentRequest{
		Reason: "mistake",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}
