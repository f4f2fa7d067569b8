package domain

import (
	"context"

	"github.com/shopspring/decimal"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, error)
	Update(ctx context.Context, cmd UpdateCommand) (*Product, error)
	Archive(ctx context.Context, id string) (*Product, error)
}

type CreateRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	HSN         string          `json:"hsn"`
	Rate        decimal.Decimal `json:"rate"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// UpdateCommand changes only the fields that are set.
type UpdateCommand struct {
	ID          string           `json:"id"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	HSN         *string          `json:"hsn,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

type ListRequest struct {
	Name    string
	Active  *bool
	SortBy  string
	OrderBy string
}

type ListFilter struct {
	Name    string
	Active  *bool
	SortBy  string
	OrderBy string
}

var (
	ErrNotFound       = ierr.NewError("product_not_found").WithHint("Product not found.").Mark(ierr.ErrNotFound)
	ErrInvalidName    = ierr.NewError("invalid_product_name").WithHint("Product name is required.").Mark(ierr.ErrValidation)
	ErrInvalidRate    = ierr.NewError("invalid_product_rate").WithHint("Rate must not be negative.").Mark(ierr.ErrValidation)
	ErrInvalidTaxRate = ierr.NewError("invalid_product_tax_rate").WithHint("Tax rate must not be negative.").Mark(ierr.ErrValidation)
)
