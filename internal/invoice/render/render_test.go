package render_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/company"
	coupondomain "github.com/smallbiznis/invoicecore/internal/coupon/domain"
	"github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/invoice/invoicetest"
	"github.com/smallbiznis/invoicecore/internal/invoice/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftUsesLiveRecords(t *testing.T) {
	h := invoicetest.New(t)
	client := h.Client(t, "Acme Traders")
	p := h.Product(t, "Design", "1000", "18")
	draft := h.Draft(t, client, invoicetest.Item(p, "2"))

	live := company.Profile{Name: "Qupr Labs", TemplateVersion: "v2"}
	doc, err := render.BuildDocument(draft, client, live)
	require.NoError(t, err)

	assert.False(t, doc.FromSnapshot)
	assert.Equal(t, "Qupr Labs", doc.Company.Name)
	assert.Equal(t, "v2", doc.TemplateVersion)
	assert.Equal(t, "Acme Traders", doc.Client.Name)
	require.Len(t, doc.Lines, 1)
	assert.True(t, doc.Lines[0].Tax.Total.Equal(decimal.RequireFromString("2360")))

	_, err = render.BuildDocument(draft, nil, live)
	assert.ErrorIs(t, err, render.ErrMissingClient)
}

func TestIssuedUsesSnapshotOnly(t *testing.T) {
	h := invoicetest.New(t)
	ctx := context.Background()
	client := h.Client(t, "Acme Traders")
	p := h.Product(t, "Design", "1000", "18")
	issued := h.Issued(t, client, invoicetest.Item(p, "1"))

	renamed := "Acme Global"
	live, err := h.Clients.Update(ctx, clientdomain.UpdateCommand{ID: client.ID.String(), CompanyName: &renamed})
	require.NoError(t, err)

	doc, err := render.BuildDocument(h.Reload(t, issued.ID), live, company.Profile{Name: "Someone Else"})
	require.NoError(t, err)
	assert.True(t, doc.FromSnapshot)
	assert.Equal(t, "Acme Traders", doc.Client.Name)
	assert.Equal(t, invoicetest.Company.Name, doc.Company.Name)
	assert.Equal(t, "v1", doc.TemplateVersion)

	require.Len(t, doc.Taxes, 1)
	assert.Equal(t, "18", doc.Taxes[0].Rate)
	assert.True(t, doc.Taxes[0].Split.CGSTAmount.Equal(decimal.RequireFromString("90")))
	assert.True(t, doc.Taxes[0].Split.SGSTRate.Equal(decimal.RequireFromString("9")))
	assert.True(t, doc.TotalTax.Equal(decimal.RequireFromString("180")))
}

func TestIssuedWithoutSnapshotIsRejected(t *testing.T) {
	_, err := render.BuildDocument(&domain.Invoice{Status: domain.StatusIssued}, nil, company.Profile{})
	assert.ErrorIs(t, err, render.ErrMissingSnapshot)
}

func TestPaidWithCouponShowsDiscount(t *testing.T) {
	h := invoicetest.New(t)
	client := h.Client(t, "Acme Traders")
	p := h.Product(t, "Design", "1000", "18")
	h.Coupon(t, coupondomain.CreateRequest{Code: "FLAT80", DiscountType: coupondomain.DiscountFixed, DiscountValue: decimal.NewFromInt(80)})
	issued := h.Issued(t, client, invoicetest.Item(p, "1"))

	_, err := h.Invoices.MarkPaid(context.Background(), domain.MarkPaidRequest{ID: issued.ID.String(), CouponCode: "FLAT80"})
	require.NoError(t, err)

	doc, err := render.BuildDocument(h.Reload(t, issued.ID), nil, company.Profile{})
	require.NoError(t, err)
	require.NotNil(t, doc.Discount)
	assert.Equal(t, "FLAT80", doc.Discount.Code)
	assert.True(t, doc.AmountDue.Equal(decimal.RequireFromString("1100")))
	assert.True(t, doc.Total.Equal(decimal.RequireFromString("1180")))

	pdf, err := render.PDF(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
