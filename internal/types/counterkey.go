package types

import (
	ierr "github.com/chainvoice/chainvoice/internal/errors"
)

// CounterKey identifies one per-company sequential numbering series.
// The string value is part of the canonical chain hash input, so existing
// values must never be renamed.
type CounterKey string

const (
	CounterKeyInvoice           CounterKey = "invoice"
	CounterKeyReceipt           CounterKey = "receipt"
	CounterKeyCreditNote        CounterKey = "creditNote"
	CounterKeyDelivery          CounterKey = "delivery"
	CounterKeyTaxInvoiceReceipt CounterKey = "taxInvoiceReceipt"
)

// CounterKeys returns all known numbering series, in sweep order
func CounterKeys() []CounterKey {
	return []CounterKey{
		CounterKeyInvoice,
		CounterKeyReceipt,
		CounterKeyCreditNote,
		CounterKeyDelivery,
		CounterKeyTaxInvoiceReceipt,
	}
}

func (k CounterKey) String() string {
	return string(k)
}

func (k CounterKey) Validate() error {
	switch k {
	case CounterKeyInvoice, CounterKeyReceipt, CounterKeyCreditNote,
		CounterKeyDelivery, CounterKeyTaxInvoiceReceipt:
		return nil
	default:
		return ierr.NewError("invalid counter key").
			WithHintf("Unknown counter key: %s", k).
			Mark(ierr.ErrValidation)
	}
}
