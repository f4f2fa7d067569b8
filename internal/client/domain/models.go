package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is a billed customer. Invoices reference it by id while DRAFT and
// carry a snapshot of it once issued.
type Client struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyName    string       `gorm:"type:text;not null" json:"company_name"`
	TaxID          string       `gorm:"column:tax_id;type:text" json:"tax_id,omitempty"`
	BillingAddress string       `gorm:"type:text;not null" json:"billing_address"`
	ContactPerson  string       `gorm:"type:text" json:"contact_person,omitempty"`
	ContactEmail   string       `gorm:"type:text" json:"contact_email,omitempty"`
	ContactPhone   string       `gorm:"type:text" json:"contact_phone,omitempty"`
	IsActive       bool         `gorm:"not null;index" json:"is_active"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
