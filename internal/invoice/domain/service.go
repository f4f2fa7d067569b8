package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Invoice, error)
	Update(ctx context.Context, req UpdateRequest) (*Invoice, error)
	Issue(ctx context.Context, req IssueRequest) (*Invoice, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) (*Invoice, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, req ListRequest) ([]Invoice, error)
}

// ItemInput asks for quantity units of a catalog product.
type ItemInput struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type CreateRequest struct {
	ClientID string      `json:"client_id"`
	Items    []ItemInput `json:"items"`
}

type UpdateRequest struct {
	ID    string      `json:"id"`
	Items []ItemInput `json:"items"`
}

// IssueRequest freezes a draft. Zero dates default to now and now plus the
// configured due days.
type IssueRequest struct {
	ID        string     `json:"id"`
	IssueDate *time.Time `json:"issue_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

// MarkPaidRequest settles an issued invoice, optionally with a coupon.
type MarkPaidRequest struct {
	ID         string     `json:"id"`
	PaidOn     *time.Time `json:"paid_on,omitempty"`
	CouponCode string     `json:"coupon_code,omitempty"`
	UserID     string     `json:"user_id,omitempty"`
}

type ListRequest struct {
	Status   Status
	ClientID string
}

type ListFilter struct {
	Status   Status
	ClientID snowflake.ID
}

var (
	ErrNotFound          = ierr.NewError("invoice_not_found").WithHint("Invoice not found.").Mark(ierr.ErrNotFound)
	ErrEmptyItems        = ierr.NewError("invoice_items_empty").WithHint("An invoice needs at least one item.").Mark(ierr.ErrValidation)
	ErrInvalidQuantity   = ierr.NewError("invalid_item_quantity").WithHint("Quantity must not be negative.").Mark(ierr.ErrValidation)
	ErrInvalidStatus     = ierr.NewError("invalid_invoice_status").WithHint("Unknown invoice status.").Mark(ierr.ErrValidation)
	ErrInvalidDates      = ierr.NewError("invalid_invoice_dates").WithHint("Due date must not be before the issue date.").Mark(ierr.ErrValidation)
	ErrInvalidTransition = ierr.NewError("invoice_invalid_transition").WithHint("The invoice is not in a state that allows this.").Mark(ierr.ErrInvalidTransition)
)

// InvalidTransition reports that t can not be applied to an invoice in from.
func InvalidTransition(from Status, t Transition) error {
	return ierr.WithError(ErrInvalidTransition).
		WithMessage(fmt.Sprintf("%s not allowed from %s", t, from)).
		Mark(ierr.ErrInvalidTransition)
}
