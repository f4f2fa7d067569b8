// Package domain contains the invoice model and its state machine.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicecore/internal/money"
	"github.com/smallbiznis/invoicecore/internal/snapshot"
	"gorm.io/datatypes"
)

// Invoice is a bill for one client. Items, snapshot and coupon details are
// held by value; none of them point at live records.
type Invoice struct {
	ID            snowflake.ID                           `json:"id" gorm:"primaryKey"`
	InvoiceNumber string                                 `json:"invoice_number" gorm:"type:varchar(64);not null;uniqueIndex:ux_invoices_number"`
	ClientID      snowflake.ID                           `json:"client_id" gorm:"not null;index"`
	Items         datatypes.JSONSlice[snapshot.LineItem] `json:"items" gorm:"type:json;not null"`
	Subtotal      decimal.Decimal                        `json:"subtotal" gorm:"type:numeric(18,2);not null"`
	TaxBreakup    datatypes.JSONType[money.TaxBreakup]   `json:"tax_breakup" gorm:"type:json;not null"`
	Total         decimal.Decimal                        `json:"total" gorm:"type:numeric(18,2);not null"`
	Status        Status                                 `json:"status" gorm:"type:varchar(16);not null;index"`
	Snapshot      *snapshot.Snapshot                     `json:"snapshot,omitempty" gorm:"type:json"`
	IssueDate     *time.Time                             `json:"issue_date,omitempty"`
	DueDate       *time.Time                             `json:"due_date,omitempty"`
	PaidOn        *time.Time                             `json:"paid_on,omitempty"`
	Coupon        *CouponApplication                     `json:"coupon,omitempty" gorm:"column:coupon;type:json"`
	MergedFrom    datatypes.JSONSlice[snowflake.ID]      `json:"merged_from,omitempty" gorm:"type:json;not null"`
	MergedAmount  decimal.NullDecimal                    `json:"merged_amount" gorm:"type:numeric(18,2)"`
	CreatedAt     time.Time                              `json:"created_at" gorm:"not null;index"`
	UpdatedAt     time.Time                              `json:"updated_at" gorm:"not null"`
}

func (Invoice) TableName() string { return "invoices" }

// Breakup returns the stored tax breakup, never nil.
func (i *Invoice) Breakup() money.TaxBreakup {
	b := i.TaxBreakup.Data()
	if b == nil {
		return money.TaxBreakup{}
	}
	return b
}

// IsMerged reports whether the invoice replaced other invoices.
func (i *Invoice) IsMerged() bool {
	return len(i.MergedFrom) > 0
}

// CouponApplication is a copy of what a coupon did to an invoice at the
// time it was applied.
type CouponApplication struct {
	CouponID       snowflake.ID    `json:"coupon_id"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	Discount       decimal.Decimal `json:"discount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	UserID         string          `json:"user_id,omitempty"`
	AppliedAt      time.Time       `json:"applied_at"`
}

func (c CouponApplication) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *CouponApplication) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = CouponApplication{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("coupon application: unsupported scan type %T", value)
	}
}
