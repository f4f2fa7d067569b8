package domain

import (
	"context"

	ierr "github.com/smallbiznis/invoicecore/internal/errors"
)

type CreateRequest struct {
	CompanyName    string `json:"company_name" validate:"required"`
	TaxID          string `json:"tax_id"`
	BillingAddress string `json:"billing_address" validate:"required"`
	ContactPerson  string `json:"contact_person"`
	ContactEmail   string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone   string `json:"contact_phone"`
}

// UpdateCommand lists the mutable client fields; nil leaves a field unchanged.
type UpdateCommand struct {
	ID             string  `json:"id"`
	CompanyName    *string `json:"company_name,omitempty"`
	TaxID          *string `json:"tax_id,omitempty"`
	BillingAddress *string `json:"billing_address,omitempty"`
	ContactPerson  *string `json:"contact_person,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	ContactPhone   *string `json:"contact_phone,omitempty"`
}

type ListRequest struct {
	CompanyName string
	Active      *bool
}

type ListFilter struct {
	CompanyName string
	Active      *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Client, error)
	Get(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context, req ListRequest) ([]Client, error)
	Update(ctx context.Context, cmd UpdateCommand) (*Client, error)
	Deactivate(ctx context.Context, id string) (*Client, error)
}

var (
	ErrNotFound              = ierr.NewError("client_not_found").WithHint("Client not found.").Mark(ierr.ErrNotFound)
	ErrInvalidCompanyName    = ierr.NewError("invalid_company_name").WithHint("Company name is required.").Mark(ierr.ErrValidation)
	ErrInvalidBillingAddress = ierr.NewError("invalid_billing_address").WithHint("Billing address is required.").Mark(ierr.ErrValidation)
	ErrInvalidEmail          = ierr.NewError("invalid_contact_email").WithHint("Contact email is not a valid address.").Mark(ierr.ErrValidation)
)
