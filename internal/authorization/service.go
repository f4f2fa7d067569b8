package authorization

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleClient Role = "client"
)

// Actor is the caller of an operation. ClientID scopes a client-role actor
// to the invoices of one client.
type Actor struct {
	UserID   string
	Role     Role
	ClientID snowflake.ID
}

type Service interface {
	Authorize(ctx context.Context, actor Actor, object, action string) error
	CanView(ctx context.Context, actor Actor, invoice *invoicedomain.Invoice) error
	CanEdit(ctx context.Context, actor Actor, invoice *invoicedomain.Invoice) error
	CanDelete(ctx context.Context, actor Actor, invoice *invoicedomain.Invoice) error
	FilterInvoices(ctx context.Context, actor Actor, invoices []invoicedomain.Invoice) ([]invoicedomain.Invoice, error)
}

var (
	ErrPermissionDenied = ierr.NewError("permission_denied").WithHint("You are not allowed to do this.").Mark(ierr.ErrPermissionDenied)
	ErrInvalidActor     = ierr.NewError("invalid_actor").WithHint("The caller could not be identified.").Mark(ierr.ErrValidation)
	ErrInvalidObject    = ierr.NewError("invalid_object").Mark(ierr.ErrValidation)
	ErrInvalidAction    = ierr.NewError("invalid_action").Mark(ierr.ErrValidation)
)
