package dto

import (
	"context"
	"time"

	"github.com/chainvoice/chainvoice/internal/domain/document"
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
	"github.com/chainvoice/chainvoice/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateDocumentRequest struct {
	DocType      types.CounterKey `json:"doc_type" validate:"required"`
	ClientName   string           `json:"client_name" validate:"required,max=255"`
	ClientNumber string           `json:"client_number" validate:"omitempty,max=64"`
	DeliveryDate *time.Time       `json:"delivery_date,omitempty"`
	Items        []LineItem       `json:"items" validate:"required,min=1,dive"`
	Discount     decimal.Decimal  `json:"discount"`
}

type LineItem struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
}

func (r *CreateDocumentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.DocType.Validate(); err != nil {
		return err
	}
	if r.Discount.IsNegative() {
		return ierr.NewError("discount cannot be negative").
			WithHint("Discount must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateDocumentRequest) ToDocument(ctx context.Context, companyID string) *document.Document {
	items := make([]document.LineItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = document.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return &document.Document{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOCUMENT),
		DocType:      r.DocType,
		DocStatus:    types.DocumentStatusDraft,
		ClientName:   r.ClientName,
		ClientNumber: r.ClientNumber,
		DeliveryDate: r.DeliveryDate,
		Items:        items,
		Discount:     r.Discount,
		BaseModel:    types.GetDefaultBaseModel(ctx, companyID),
	}
}

type VoidDocumentRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r *VoidDocumentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type DocumentResponse struct {
	*document.Document
}

type ListDocumentsRequest struct {
	DocType   *types.CounterKey     `form:"doc_type" json:"doc_type,omitempty"`
	DocStatus *types.DocumentStatus `form:"doc_status" json:"doc_status,omitempty"`
	Limit     int                   `form:"limit" json:"limit,omitempty"`
}

func (r *ListDocumentsRequest) Validate() error {
	if r.DocType != nil {
		if err := r.DocType.Validate(); err != nil {
			return err
		}
	}
	if r.DocStatus != nil {
		if err := r.DocStatus.Validate(); err != nil {
			return err
		}
	}
	if r.Limit < 0 || r.Limit > 1000 {
		return ierr.NewError("invalid limit").
			WithHint("Limit must be between 0 and 1000").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *ListDocumentsRequest) ToFilter() *document.Filter {
	limit := r.Limit
	if limit == 0 {
		limit = 100
	}
	return &document.Filter{
		DocType:   r.DocType,
		DocStatus: r.DocStatus,
		Limit:     limit,
	}
}

type ListDocumentsResponse struct {
	Items []*DocumentResponse `json:"items"`
	Total int                 `json:"total"`
}
