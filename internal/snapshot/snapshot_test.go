package snapshot

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/company"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	productdomain "github.com/smallbiznis/invoicecore/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCopiesByValue(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	profile := company.Profile{Name: "Acme Services", TaxID: "29AAACA1234A1Z5", Address: "Bengaluru", TemplateVersion: "v2"}
	client := &clientdomain.Client{ID: snowflake.ID(42), CompanyName: "Globex", BillingAddress: "Mumbai"}

	snap, err := Build(profile, client, now)
	require.NoError(t, err)

	profile.Name = "Renamed"
	client.CompanyName = "Renamed"
	client.BillingAddress = "Elsewhere"

	assert.Equal(t, "Acme Services", snap.Company.Name)
	assert.Equal(t, "v2", snap.TemplateVersion())
	assert.Equal(t, now, snap.Company.SnapshotAt)
	assert.Equal(t, snowflake.ID(42), snap.Client.ClientID)
	assert.Equal(t, "Globex", snap.Client.CompanyName)
	assert.Equal(t, "Mumbai", snap.Client.BillingAddress)
}

func TestBuildCompanyDefaultsTemplateVersion(t *testing.T) {
	co, err := BuildCompany(company.Profile{Name: "Acme"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, company.DefaultTemplateVersion, co.TemplateVersion)
}

func TestBuildRejectsMissingFields(t *testing.T) {
	_, err := BuildCompany(company.Profile{}, time.Now())
	assert.True(t, ierr.IsValidation(err))

	_, err = BuildClient(nil)
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = BuildItem(&productdomain.Product{ID: 1}, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestBuildItem(t *testing.T) {
	product := &productdomain.Product{
		ID:      snowflake.ID(7),
		Name:    "Audit",
		HSN:     "998221",
		Rate:    decimal.NewFromInt(100),
		TaxRate: decimal.NewFromInt(18),
	}

	item, err := BuildItem(product, decimal.RequireFromString("2.5"))
	require.NoError(t, err)

	product.Rate = decimal.NewFromInt(500)

	assert.Equal(t, snowflake.ID(7), item.ProductID)
	assert.True(t, item.Rate.Equal(decimal.NewFromInt(100)))
	assert.True(t, item.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "998221", item.HSN)
}

func TestSnapshotValueScan(t *testing.T) {
	snap := Snapshot{
		Company: Company{Name: "Acme", TemplateVersion: "v1", SnapshotAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		Client:  Client{ClientID: 9, CompanyName: "Globex"},
	}

	raw, err := snap.Value()
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, decoded.Scan([]byte(raw.(string))))
	assert.Equal(t, snap, decoded)

	assert.Error(t, decoded.Scan(12))
}
