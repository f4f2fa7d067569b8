// Package snapshot copies live records into values that invoices own.
package snapshot

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/company"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	productdomain "github.com/smallbiznis/invoicecore/internal/product/domain"
)

var ErrMissingField = ierr.NewError("snapshot_missing_field").
	WithHint("The source record is missing a required field.").
	Mark(ierr.ErrValidation)

// Company is the issuing business as it was at issuance.
type Company struct {
	Name            string    `json:"name"`
	TaxID           string    `json:"tax_id,omitempty"`
	Address         string    `json:"address,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	TemplateVersion string    `json:"template_version"`
	SnapshotAt      time.Time `json:"snapshot_at"`
}

// Client is the billed party as it was at issuance.
type Client struct {
	ClientID       snowflake.ID `json:"client_id"`
	CompanyName    string       `json:"company_name"`
	TaxID          string       `json:"tax_id,omitempty"`
	BillingAddress string       `json:"billing_address"`
	ContactPerson  string       `json:"contact_person,omitempty"`
	ContactEmail   string       `json:"contact_email,omitempty"`
	ContactPhone   string       `json:"contact_phone,omitempty"`
}

// LineItem is a product copied by value when it is added to an invoice.
type LineItem struct {
	ProductID   snowflake.ID    `json:"product_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	HSN         string          `json:"hsn,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Snapshot is attached to an invoice exactly once, when it leaves DRAFT.
type Snapshot struct {
	Company Company `json:"company"`
	Client  Client  `json:"client"`
}

func (s Snapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Snapshot) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = Snapshot{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("snapshot: unsupported scan type %T", value)
	}
}

// TemplateVersion is the render template the invoice was frozen against.
func (s Snapshot) TemplateVersion() string {
	return s.Company.TemplateVersion
}

func BuildCompany(profile company.Profile, now time.Time) (Company, error) {
	if profile.Name == "" {
		return Company{}, ierr.WithError(ErrMissingField).WithMessage("company name").Mark(ierr.ErrValidation)
	}
	version := profile.TemplateVersion
	if version == "" {
		version = company.DefaultTemplateVersion
	}
	return Company{
		Name:            profile.Name,
		TaxID:           profile.TaxID,
		Address:         profile.Address,
		Email:           profile.Email,
		Phone:           profile.Phone,
		TemplateVersion: version,
		SnapshotAt:      now.UTC(),
	}, nil
}

func BuildClient(c *clientdomain.Client) (Client, error) {
	if c == nil || c.ID == 0 || c.CompanyName == "" {
		return Client{}, ierr.WithError(ErrMissingField).WithMessage("client").Mark(ierr.ErrValidation)
	}
	return Client{
		ClientID:       c.ID,
		CompanyName:    c.CompanyName,
		TaxID:          c.TaxID,
		BillingAddress: c.BillingAddress,
		ContactPerson:  c.ContactPerson,
		ContactEmail:   c.ContactEmail,
		ContactPhone:   c.ContactPhone,
	}, nil
}

func BuildItem(p *productdomain.Product, quantity decimal.Decimal) (LineItem, error) {
	if p == nil || p.ID == 0 || p.Name == "" {
		return LineItem{}, ierr.WithError(ErrMissingField).WithMessage("product").Mark(ierr.ErrValidation)
	}
	return LineItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		HSN:         p.HSN,
		Rate:        p.Rate,
		TaxRate:     p.TaxRate,
		Quantity:    quantity,
	}, nil
}

// Build freezes company and client identity at now.
func Build(profile company.Profile, c *clientdomain.Client, now time.Time) (*Snapshot, error) {
	co, err := BuildCompany(profile, now)
	if err != nil {
		return nil, err
	}
	cl, err := BuildClient(c)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Company: co, Client: cl}, nil
}
