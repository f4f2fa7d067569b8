package domain

import (
	"context"

	"github.com/shopspring/decimal"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
)

// InvoiceStats summarizes invoices. Revenue sums PAID totals and Pending
// sums ISSUED totals.
type InvoiceStats struct {
	TotalInvoices int64                          `json:"total_invoices"`
	ByStatus      map[invoicedomain.Status]int64 `json:"by_status"`
	Revenue       decimal.Decimal                `json:"revenue"`
	Pending       decimal.Decimal                `json:"pending"`
}

type Stats struct {
	ActiveClients  int64 `json:"active_clients"`
	ActiveProducts int64 `json:"active_products"`
	InvoiceStats
}

type Service interface {
	Stats(ctx context.Context) (Stats, error)
	ClientStats(ctx context.Context, clientID string) (InvoiceStats, error)
}

var ErrClientNotFound = ierr.NewError("dashboard_client_not_found").WithHint("Client not found.").Mark(ierr.ErrNotFound)
