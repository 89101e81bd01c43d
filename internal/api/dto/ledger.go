package dto

import (
	ierr "github.com/chainvoice/chainvoice/internal/errors"
	"github.com/chainvoice/chainvoice/internal/types"
)

type VerifyChainRequest struct {
	CounterKey types.CounterKey `form:"counter_key" json:"counter_key" validate:"required"`
	From       int64            `form:"from" json:"from" validate:"required,min=1"`
	To         int64            `form:"to" json:"to" validate:"required,min=1"`
}

func (r *VerifyChainRequest) Validate() error {
	if err := r.CounterKey.Validate(); err != nil {
		return err
	}
	if r.From < 1 {
		return ierr.NewError("invalid range start").
			WithHint("Chain positions start at 1").
			Mark(ierr.ErrValidation)
	}
	if r.To < r.From {
		return ierr.NewError("invalid range").
			WithHint("Range end must not precede range start").
			Mark(ierr.ErrValidation)
	}
	return nil
}
