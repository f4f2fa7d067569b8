package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Invoices copy its fields into line items when
// the item is added, so later edits never reach existing invoices.
type Product struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:text;not null"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	HSN         string          `json:"hsn,omitempty" gorm:"column:hsn;type:text"`
	Rate        decimal.Decimal `json:"rate" gorm:"type:numeric(18,2);not null"`
	TaxRate     decimal.Decimal `json:"tax_rate" gorm:"type:numeric(5,2);not null"`
	IsActive    bool            `json:"is_active" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }
