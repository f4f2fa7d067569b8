package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicecore/internal/dashboard/domain"
	"github.com/smallbiznis/invoicecore/internal/dashboard/service"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/invoice/invoicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStats(t *testing.T) {
	h := invoicetest.New(t)
	ctx := context.Background()
	svc := service.NewService(service.Params{DB: h.DB, Log: zap.NewNop()})

	acme := h.Client(t, "Acme Traders")
	globex := h.Client(t, "Globex")
	_, err := h.Clients.Deactivate(ctx, globex.ID.String())
	require.NoError(t, err)

	design := h.Product(t, "Design", "1000", "18")
	hosting := h.Product(t, "Hosting", "500", "0")
	_, err = h.Products.Archive(ctx, hosting.ID.String())
	require.NoError(t, err)

	h.Draft(t, acme, invoicetest.Item(design, "1"))
	h.Issued(t, acme, invoicetest.Item(design, "1"))
	h.Issued(t, globex, invoicetest.Item(hosting, "1"))
	h.Paid(t, acme, invoicetest.Item(design, "2"))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ActiveClients)
	assert.EqualValues(t, 1, stats.ActiveProducts)
	assert.EqualValues(t, 4, stats.TotalInvoices)
	assert.EqualValues(t, 1, stats.ByStatus[invoicedomain.StatusDraft])
	assert.EqualValues(t, 2, stats.ByStatus[invoicedomain.StatusIssued])
	assert.EqualValues(t, 1, stats.ByStatus[invoicedomain.StatusPaid])
	assert.True(t, stats.Revenue.Equal(decimal.RequireFromString("2360")), stats.Revenue.String())
	assert.True(t, stats.Pending.Equal(decimal.RequireFromString("1680")), stats.Pending.String())

	scoped, err := svc.ClientStats(ctx, globex.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 1, scoped.TotalInvoices)
	assert.True(t, scoped.Pending.Equal(decimal.RequireFromString("500")))
	assert.True(t, scoped.Revenue.IsZero())
	assert.EqualValues(t, 0, scoped.ByStatus[invoicedomain.StatusPaid])
}

func TestClientStatsUnknownClient(t *testing.T) {
	h := invoicetest.New(t)
	svc := service.NewService(service.Params{DB: h.DB, Log: zap.NewNop()})

	for _, id := range []string{"", "abc", "12345"} {
		_, err := svc.ClientStats(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrClientNotFound)
		assert.True(t, ierr.IsNotFound(err))
	}
}

func TestStatsEmpty(t *testing.T) {
	h := invoicetest.New(t)
	svc := service.NewService(service.Params{DB: h.DB, Log: zap.NewNop()})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalInvoices)
	assert.True(t, stats.Revenue.IsZero())
	assert.Len(t, stats.ByStatus, 3)
}
