// Package invoicetest assembles the invoicing services over a private
// in-memory database for tests that span several packages.
package invoicetest

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	clientrepo "github.com/smallbiznis/invoicecore/internal/client/repository"
	clientservice "github.com/smallbiznis/invoicecore/internal/client/service"
	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/company"
	"github.com/smallbiznis/invoicecore/internal/config"
	coupondomain "github.com/smallbiznis/invoicecore/internal/coupon/domain"
	couponrepo "github.com/smallbiznis/invoicecore/internal/coupon/repository"
	couponservice "github.com/smallbiznis/invoicecore/internal/coupon/service"
	"github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/invoice/repository"
	"github.com/smallbiznis/invoicecore/internal/invoice/service"
	productdomain "github.com/smallbiznis/invoicecore/internal/product/domain"
	productrepo "github.com/smallbiznis/invoicecore/internal/product/repository"
	productservice "github.com/smallbiznis/invoicecore/internal/product/service"
	"github.com/smallbiznis/invoicecore/internal/sequence"
	"github.com/smallbiznis/invoicecore/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Now is the harness clock's starting time.
var Now = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

// Company is the issuing company every harness is configured with.
var Company = company.Profile{
	Name:            "Qupr Digital",
	TaxID:           "29ABCDE1234F1Z5",
	Address:         "12 MG Road, Bengaluru",
	Email:           "billing@qupr.example",
	TemplateVersion: "v1",
}

type Harness struct {
	DB       *gorm.DB
	Clock    *clock.FakeClock
	GenID    *snowflake.Node
	Config   config.Config
	Company  company.Provider
	Sequence sequence.Allocator
	Repo     domain.Repository

	Clients  clientdomain.Service
	Products productdomain.Service
	Coupons  coupondomain.Service
	Invoices domain.Service
}

func New(t testing.TB) *Harness {
	t.Helper()

	h := &Harness{
		DB:      testutil.NewDB(t),
		Clock:   clock.NewFakeClock(Now),
		GenID:   testutil.NewNode(t),
		Company: company.NewStatic(Company),
		Repo:    repository.Provide(),
		Config: config.Config{
			InvoicePrefix:         "INV",
			InvoiceNumberTemplate: sequence.DefaultTemplate,
			InvoiceDueDays:        30,
		},
	}
	h.Sequence = sequence.NewDatabase(h.Config.InvoiceNumberTemplate, h.Clock)

	log := zap.NewNop()
	h.Clients = clientservice.New(clientservice.Params{DB: h.DB, Log: log, GenID: h.GenID, Repo: clientrepo.Provide(), Clock: h.Clock})
	h.Products = productservice.New(productservice.Params{DB: h.DB, Log: log, GenID: h.GenID, Repo: productrepo.Provide(), Clock: h.Clock})
	h.Coupons = couponservice.New(couponservice.Params{DB: h.DB, Log: log, GenID: h.GenID, Repo: couponrepo.Provide(), Clock: h.Clock})
	h.Invoices = h.InvoiceService(h.Coupons)
	return h
}

// InvoiceService builds an invoice service that redeems through coupons.
func (h *Harness) InvoiceService(coupons coupondomain.Service) domain.Service {
	return service.New(service.Params{
		DB:        h.DB,
		Log:       zap.NewNop(),
		GenID:     h.GenID,
		Repo:      h.Repo,
		Clock:     h.Clock,
		Config:    h.Config,
		Sequence:  h.Sequence,
		Company:   h.Company,
		ClientSvc: h.Clients,
		Products:  h.Products,
		Coupons:   coupons,
	})
}

func (h *Harness) Client(t testing.TB, name string) *clientdomain.Client {
	t.Helper()
	c, err := h.Clients.Create(context.Background(), clientdomain.CreateRequest{
		CompanyName:    name,
		TaxID:          "27aaaaa0000a1z5",
		BillingAddress: "4 Marine Drive, Mumbai",
		ContactPerson:  "Asha Rao",
		ContactEmail:   "accounts@client.example",
	})
	require.NoError(t, err)
	return c
}

func (h *Harness) Product(t testing.TB, name, rate, taxRate string) *productdomain.Product {
	t.Helper()
	p, err := h.Products.Create(context.Background(), productdomain.CreateRequest{
		Name:    name,
		HSN:     "998314",
		Rate:    decimal.RequireFromString(rate),
		TaxRate: decimal.RequireFromString(taxRate),
	})
	require.NoError(t, err)
	return p
}

func (h *Harness) Coupon(t testing.TB, req coupondomain.CreateRequest) *coupondomain.Coupon {
	t.Helper()
	c, err := h.Coupons.Create(context.Background(), req)
	require.NoError(t, err)
	return c
}

// Item is a line input for product p.
func Item(p *productdomain.Product, qty string) domain.ItemInput {
	return domain.ItemInput{ProductID: p.ID.String(), Quantity: decimal.RequireFromString(qty)}
}

func (h *Harness) Draft(t testing.TB, client *clientdomain.Client, items ...domain.ItemInput) *domain.Invoice {
	t.Helper()
	inv, err := h.Invoices.Create(context.Background(), domain.CreateRequest{ClientID: client.ID.String(), Items: items})
	require.NoError(t, err)
	return inv
}

func (h *Harness) Issued(t testing.TB, client *clientdomain.Client, items ...domain.ItemInput) *domain.Invoice {
	t.Helper()
	draft := h.Draft(t, client, items...)
	inv, err := h.Invoices.Issue(context.Background(), domain.IssueRequest{ID: draft.ID.String()})
	require.NoError(t, err)
	return inv
}

func (h *Harness) Paid(t testing.TB, client *clientdomain.Client, items ...domain.ItemInput) *domain.Invoice {
	t.Helper()
	issued := h.Issued(t, client, items...)
	inv, err := h.Invoices.MarkPaid(context.Background(), domain.MarkPaidRequest{ID: issued.ID.String()})
	require.NoError(t, err)
	return inv
}

// Reload reads the invoice back from storage.
func (h *Harness) Reload(t testing.TB, id snowflake.ID) *domain.Invoice {
	t.Helper()
	inv, err := h.Invoices.Get(context.Background(), id.String())
	require.NoError(t, err)
	return inv
}

func (h *Harness) ReloadCoupon(t testing.TB, id snowflake.ID) *coupondomain.Coupon {
	t.Helper()
	c, err := h.Coupons.Get(context.Background(), id.String())
	require.NoError(t, err)
	return c
}
