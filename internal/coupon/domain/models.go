package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicecore/internal/money"
	"gorm.io/datatypes"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Coupon is a discount code. UsedCount only grows and UsedBy holds each
// user at most once.
type Coupon struct {
	ID            snowflake.ID                `json:"id" gorm:"primaryKey"`
	Code          string                      `json:"code" gorm:"type:varchar(64);not null;uniqueIndex:ux_coupons_code"`
	Description   string                      `json:"description,omitempty" gorm:"type:text"`
	DiscountType  DiscountType                `json:"discount_type" gorm:"type:varchar(16);not null"`
	DiscountValue decimal.Decimal             `json:"discount_value" gorm:"type:numeric(18,2);not null"`
	MaxUses       *int64                      `json:"max_uses,omitempty"`
	UsedCount     int64                       `json:"used_count" gorm:"not null"`
	IsActive      bool                        `json:"is_active" gorm:"not null;index"`
	ValidFrom     *time.Time                  `json:"valid_from,omitempty"`
	ValidUntil    *time.Time                  `json:"valid_until,omitempty"`
	MinAmount     decimal.NullDecimal         `json:"min_amount" gorm:"type:numeric(18,2)"`
	UsedBy        datatypes.JSONSlice[string] `json:"used_by" gorm:"type:json"`
	CreatedAt     time.Time                   `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time                   `json:"updated_at" gorm:"not null"`
}

func (Coupon) TableName() string { return "coupons" }

// NormalizeCode is the lookup form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Discount computes what t and value take off amount. The result never
// exceeds amount, so the payable amount can not go negative.
func Discount(t DiscountType, value, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch t {
	case DiscountPercentage:
		discount = money.Round(amount.Mul(value).Div(decimal.NewFromInt(100)))
	case DiscountFixed:
		discount = value
	default:
		return decimal.Zero
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, amount)
}

// Validation is the outcome of a successful Validate. It carries the
// coupon's own identity so the caller can redeem it later.
type Validation struct {
	CouponID snowflake.ID    `json:"coupon_id"`
	Code     string          `json:"code"`
	Type     DiscountType    `json:"discount_type"`
	Value    decimal.Decimal `json:"discount_value"`
	Amount   decimal.Decimal `json:"amount"`
	Discount decimal.Decimal `json:"discount"`
	Final    decimal.Decimal `json:"final"`
}
