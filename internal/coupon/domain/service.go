package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
)

type Service interface {
	// Validate checks code against amount and userID without changing anything.
	Validate(ctx context.Context, code string, amount decimal.Decimal, userID string) (*Validation, error)
	// Redeem records one use of the coupon. Call it only after the payment
	// it belongs to is durably stored.
	Redeem(ctx context.Context, couponID snowflake.ID, userID string) error

	Create(ctx context.Context, req CreateRequest) (*Coupon, error)
	Get(ctx context.Context, id string) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context, req ListRequest) ([]Coupon, error)
	Update(ctx context.Context, cmd UpdateCommand) (*Coupon, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Code          string           `json:"code" validate:"required,max=64"`
	Description   string           `json:"description"`
	DiscountType  DiscountType     `json:"discount_type" validate:"required,oneof=PERCENTAGE FIXED"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MaxUses       *int64           `json:"max_uses,omitempty" validate:"omitempty,gte=0"`
	ValidFrom     *time.Time       `json:"valid_from,omitempty"`
	ValidUntil    *time.Time       `json:"valid_until,omitempty"`
	MinAmount     *decimal.Decimal `json:"min_amount,omitempty"`
	Inactive      bool             `json:"inactive,omitempty"`
}

// UpdateCommand edits a coupon's terms. Usage counters are not editable.
type UpdateCommand struct {
	ID              string           `json:"id"`
	Description     *string          `json:"description,omitempty"`
	DiscountType    *DiscountType    `json:"discount_type,omitempty"`
	DiscountValue   *decimal.Decimal `json:"discount_value,omitempty"`
	MaxUses         *int64           `json:"max_uses,omitempty"`
	ClearMaxUses    bool             `json:"clear_max_uses,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
	ValidFrom       *time.Time       `json:"valid_from,omitempty"`
	ClearValidFrom  bool             `json:"clear_valid_from,omitempty"`
	ValidUntil      *time.Time       `json:"valid_until,omitempty"`
	ClearValidUntil bool             `json:"clear_valid_until,omitempty"`
	MinAmount       *decimal.Decimal `json:"min_amount,omitempty"`
	ClearMinAmount  bool             `json:"clear_min_amount,omitempty"`
}

type ListRequest struct {
	Active *bool
}

type ListFilter struct {
	Active *bool
}

var (
	ErrNotFound             = ierr.NewError("coupon_not_found").WithHint("Coupon not found.").Mark(ierr.ErrNotFound)
	ErrDuplicateCode        = ierr.NewError("coupon_code_taken").WithHint("A coupon with this code already exists.").Mark(ierr.ErrConflict)
	ErrInvalidCode          = ierr.NewError("invalid_coupon_code").WithHint("Coupon code is required.").Mark(ierr.ErrValidation)
	ErrInvalidDiscountType  = ierr.NewError("invalid_discount_type").WithHint("Discount type must be PERCENTAGE or FIXED.").Mark(ierr.ErrValidation)
	ErrInvalidDiscountValue = ierr.NewError("invalid_discount_value").WithHint("Discount value must be positive; percentages may not exceed 100.").Mark(ierr.ErrValidation)
	ErrInvalidWindow        = ierr.NewError("invalid_validity_window").WithHint("valid_from must be before valid_until.").Mark(ierr.ErrValidation)
	ErrInvalidLimit         = ierr.NewError("invalid_coupon_limit").WithHint("max_uses and min_amount must not be negative.").Mark(ierr.ErrValidation)
	ErrInvalidAmount        = ierr.NewError("invalid_amount").WithHint("Amount must not be negative.").Mark(ierr.ErrValidation)
)
