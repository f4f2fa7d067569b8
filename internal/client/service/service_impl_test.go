package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/client/repository"
	"github.com/smallbiznis/invoicecore/internal/clock"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	"github.com/smallbiznis/invoicecore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	return New(Params{
		DB:    testutil.NewDB(t),
		Log:   zap.NewNop(),
		GenID: testutil.NewNode(t),
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)),
	})
}

func TestCreateNormalizesFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	client, err := svc.Create(ctx, domain.CreateRequest{
		CompanyName:    "  Acme Traders ",
		TaxID:          "27abcde1234f1z5",
		BillingAddress: "12 Market Road, Pune",
		ContactEmail:   "Billing@Acme.Example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", client.CompanyName)
	assert.Equal(t, "27ABCDE1234F1Z5", client.TaxID)
	assert.Equal(t, "billing@acme.example", client.ContactEmail)
	assert.True(t, client.IsActive)

	got, err := svc.Get(ctx, client.ID.String())
	require.NoError(t, err)
	assert.Equal(t, client.CompanyName, got.CompanyName)
	assert.Equal(t, client.BillingAddress, got.BillingAddress)
	assert.True(t, got.IsActive)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{BillingAddress: "somewhere"})
	assert.ErrorIs(t, err, domain.ErrInvalidCompanyName)
	assert.True(t, ierr.IsValidation(err))

	_, err = svc.Create(ctx, domain.CreateRequest{CompanyName: "Acme"})
	assert.ErrorIs(t, err, domain.ErrInvalidBillingAddress)

	_, err = svc.Create(ctx, domain.CreateRequest{
		CompanyName:    "Acme",
		BillingAddress: "somewhere",
		ContactEmail:   "not-an-email",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestGetUnknownOrMalformedID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "not-an-id")
	assert.True(t, ierr.IsNotFound(err))

	_, err = svc.Get(ctx, "123456789")
	assert.True(t, ierr.IsNotFound(err))
}

func TestUpdateAndDeactivate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	client, err := svc.Create(ctx, domain.CreateRequest{
		CompanyName:    "Acme",
		BillingAddress: "Old address",
	})
	require.NoError(t, err)

	address := "New address"
	updated, err := svc.Update(ctx, domain.UpdateCommand{ID: client.ID.String(), BillingAddress: &address})
	require.NoError(t, err)
	assert.Equal(t, "New address", updated.BillingAddress)
	assert.Equal(t, "Acme", updated.CompanyName)

	empty := " "
	_, err = svc.Update(ctx, domain.UpdateCommand{ID: client.ID.String(), CompanyName: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidCompanyName)

	deactivated, err := svc.Deactivate(ctx, client.ID.String())
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	active := true
	list, err := svc.List(ctx, domain.ListRequest{Active: &active})
	require.NoError(t, err)
	assert.Empty(t, list)

	inactive := false
	list, err = svc.List(ctx, domain.ListRequest{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New address", list[0].BillingAddress)
}

func TestListFiltersByName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Globex", "Acme Traders", "Acme Foods"} {
		_, err := svc.Create(ctx, domain.CreateRequest{CompanyName: name, BillingAddress: "x"})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, domain.ListRequest{CompanyName: "ACME"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acme Foods", list[0].CompanyName)
	assert.Equal(t, "Acme Traders", list[1].CompanyName)
}
