package domain

import (
	"context"

	"github.com/shopspring/decimal"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
)

// Request combines two ISSUED invoices of one client into a new ISSUED
// invoice. Override replaces the sum of both totals when set.
type Request struct {
	FirstID    string           `json:"first_id"`
	SecondID   string           `json:"second_id"`
	Override   *decimal.Decimal `json:"override,omitempty"`
	CouponCode string           `json:"coupon_code,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
}

type Service interface {
	Merge(ctx context.Context, req Request) (*invoicedomain.Invoice, error)
}

var (
	ErrSameInvoice     = ierr.NewError("merge_same_invoice").WithHint("Pick two different invoices to merge.").Mark(ierr.ErrValidation)
	ErrClientMismatch  = ierr.NewError("merge_client_mismatch").WithHint("Only invoices of the same client can be merged.").Mark(ierr.ErrConflict)
	ErrInvalidOverride = ierr.NewError("merge_invalid_override").WithHint("The merged amount must not be negative.").Mark(ierr.ErrValidation)
)
