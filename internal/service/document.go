package service

import (
	"context"
	"time"

	"github.com/chainvoice/chainvoice/internal/api/dto"
	"github.com/chainvoice/chainvoice/internal/domain/document"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/samber/lo"
)

// DocumentService covers authoring: drafts in, reads out, and the soft void
// of issued documents. The draft → issued transition itself belongs to the
// issuance service.
type DocumentService interface {
	CreateDraft(ctx context.Context, companyID string, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	Get(ctx context.Context, companyID, id string) (*dto.DocumentResponse, error)
	List(ctx context.Context, companyID string, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error)
	Void(ctx context.Context, companyID, id string, req *dto.VoidDocumentRequest) (*dto.DocumentResponse, error)
}

type documentService struct {
	ServiceParams
	access AccessService
}

func NewDocumentService(params ServiceParams, access AccessService) DocumentService {
	return &documentService{
		ServiceParams: params,
		access:        access,
	}
}

func (s *documentService) CreateDraft(ctx context.Context, companyID string, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, comp, err := s.access.ResolveActor(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeIssue(actor, comp, time.Now().UTC()); err != nil {
		return nil, err
	}

	doc := req.ToDocument(ctx, companyID)
	if err := s.DocumentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.Logger.Infow("created draft document",
		"company_id", companyID,
		"doc_id", doc.ID,
		"doc_type", doc.DocType,
	)
	return &dto.DocumentResponse{Document: doc}, nil
}

func (s *documentService) Get(ctx context.Context, companyID, id string) (*dto.DocumentResponse, error) {
	if _, _, err := s.access.ResolveActor(ctx, companyID); err != nil {
		return nil, err
	}

	doc, err := s.DocumentRepo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return &dto.DocumentResponse{Document: doc}, nil
}

func (s *documentService) List(ctx context.Context, companyID string, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := s.access.ResolveActor(ctx, companyID); err != nil {
		return nil, err
	}

	docs, err := s.DocumentRepo.List(ctx, companyID, req.ToFilter())
	if err != nil {
		return nil, err
	}

	items := lo.Map(docs, func(d *document.Document, _ int) *dto.DocumentResponse {
		return &dto.DocumentResponse{Document: d}
	})
	return &dto.ListDocumentsResponse{Items: items, Total: len(items)}, nil
}

// Void soft-voids an issued document. The sequential number and the chain
// entry survive untouched; only the business status changes.
func (s *documentService) Void(ctx context.Context, companyID, id string, req *dto.VoidDocumentRequest) (*dto.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	actor, comp, err := s.access.ResolveActor(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeIssue(actor, comp, time.Now().UTC()); err != nil {
		return nil, err
	}

	doc, err := s.DocumentRepo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if doc.DocStatus != types.DocumentStatusIssued {
		return nil, ierr.NewError("only issued documents can be voided").
			WithHintf("Document %s is %s", id, doc.DocStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	if err := s.DocumentRepo.MarkVoided(ctx, companyID, id, &document.Void{
		VoidedAt: now,
		VoidedBy: actor.ID,
		Reason:   req.Reason,
	}); err != nil {
		return nil, err
	}

	doc.DocStatus = types.DocumentStatusVoided
	doc.VoidedAt = &now
	doc.VoidedBy = actor.ID
	doc.VoidReason = req.Reason

	s.Logger.Infow("voided document",
		"company_id", companyID,
		"doc_id", id,
		"doc_number", doc.SequentialNumber,
	)
	return &dto.DocumentResponse{Document: doc}, nil
}
