package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	coupondomain "github.com/smallbiznis/invoicecore/internal/coupon/domain"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/invoice/invoicetest"
	"github.com/smallbiznis/invoicecore/internal/merge/domain"
	"github.com/smallbiznis/invoicecore/internal/merge/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newMerger(h *invoicetest.Harness, repo invoicedomain.Repository) domain.Service {
	return service.New(service.Params{
		DB:        h.DB,
		Log:       zap.NewNop(),
		GenID:     h.GenID,
		Clock:     h.Clock,
		Config:    h.Config,
		Sequence:  h.Sequence,
		Company:   h.Company,
		Invoices:  h.Invoices,
		Repo:      repo,
		ClientSvc: h.Clients,
		Coupons:   h.Coupons,
	})
}

type fixture struct {
	h      *invoicetest.Harness
	merger domain.Service
	a, b   *invoicedomain.Invoice
}

// newFixture issues two invoices totalling 1000 and 500 for one client.
func newFixture(t *testing.T) fixture {
	h := invoicetest.New(t)
	client := h.Client(t, "Acme Traders")
	big := h.Product(t, "Retainer", "1000", "0")
	small := h.Product(t, "Hosting", "500", "0")
	return fixture{
		h:      h,
		merger: newMerger(h, h.Repo),
		a:      h.Issued(t, client, invoicetest.Item(big, "1")),
		b:      h.Issued(t, client, invoicetest.Item(small, "1")),
	}
}

func (f fixture) assertUntouched(t *testing.T) {
	t.Helper()
	assert.Equal(t, invoicedomain.StatusIssued, f.h.Reload(t, f.a.ID).Status)
	assert.Equal(t, invoicedomain.StatusIssued, f.h.Reload(t, f.b.ID).Status)
	all, err := f.h.Invoices.List(context.Background(), invoicedomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMergeWithPercentageCoupon(t *testing.T) {
	f := newFixture(t)
	coupon := f.h.Coupon(t, coupondomain.CreateRequest{Code: "SAVE10", DiscountType: coupondomain.DiscountPercentage, DiscountValue: dec("10")})

	merged, err := f.merger.Merge(context.Background(), domain.Request{
		FirstID:    f.a.ID.String(),
		SecondID:   f.b.ID.String(),
		CouponCode: "SAVE10",
		UserID:     "user-1",
	})
	require.NoError(t, err)

	stored := f.h.Reload(t, merged.ID)
	assert.Equal(t, invoicedomain.StatusIssued, stored.Status)
	assert.Equal(t, "INV00003", stored.InvoiceNumber)
	assert.True(t, stored.Total.Equal(dec("1350")))
	assert.True(t, stored.Subtotal.Equal(dec("1350")))
	assert.Empty(t, stored.Breakup())
	assert.Equal(t, []snowflake.ID{f.a.ID, f.b.ID}, []snowflake.ID(stored.MergedFrom))
	assert.True(t, stored.IsMerged())
	require.True(t, stored.MergedAmount.Valid)
	assert.True(t, stored.MergedAmount.Decimal.Equal(dec("1500")))

	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Merged from invoice #INV00001", stored.Items[0].Name)
	assert.True(t, stored.Items[0].Rate.Equal(dec("1000")))
	assert.True(t, stored.Items[1].Rate.Equal(dec("500")))

	require.NotNil(t, stored.Coupon)
	assert.Equal(t, "SAVE10", stored.Coupon.Code)
	assert.True(t, stored.Coupon.Discount.Equal(dec("150")))
	assert.True(t, stored.Coupon.OriginalAmount.Equal(dec("1500")))

	require.NotNil(t, stored.Snapshot)
	assert.Equal(t, "Acme Traders", stored.Snapshot.Client.CompanyName)
	require.NotNil(t, stored.DueDate)
	assert.True(t, stored.DueDate.Equal(invoicetest.Now.AddDate(0, 0, 30)))

	assert.Equal(t, invoicedomain.StatusPaid, f.h.Reload(t, f.a.ID).Status)
	assert.Equal(t, invoicedomain.StatusPaid, f.h.Reload(t, f.b.ID).Status)

	redeemed := f.h.ReloadCoupon(t, coupon.ID)
	assert.EqualValues(t, 1, redeemed.UsedCount)
	assert.Contains(t, []string(redeemed.UsedBy), "user-1")
}

func TestMergeWithOverrideAndNoCoupon(t *testing.T) {
	f := newFixture(t)
	override := dec("1200")

	merged, err := f.merger.Merge(context.Background(), domain.Request{
		FirstID:  f.a.ID.String(),
		SecondID: f.b.ID.String(),
		Override: &override,
	})
	require.NoError(t, err)
	assert.True(t, merged.Total.Equal(dec("1200")))
	assert.Nil(t, merged.Coupon)
	assert.True(t, f.h.Reload(t, merged.ID).MergedAmount.Decimal.Equal(dec("1200")))
}

func TestMergeFixedCouponNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	f.h.Coupon(t, coupondomain.CreateRequest{Code: "HUGE", DiscountType: coupondomain.DiscountFixed, DiscountValue: dec("5000")})

	merged, err := f.merger.Merge(context.Background(), domain.Request{
		FirstID:    f.a.ID.String(),
		SecondID:   f.b.ID.String(),
		CouponCode: "HUGE",
	})
	require.NoError(t, err)
	assert.True(t, merged.Total.IsZero())
}

func TestMergeRejectedCouponChangesNothing(t *testing.T) {
	f := newFixture(t)
	limit := int64(0)
	coupon := f.h.Coupon(t, coupondomain.CreateRequest{
		Code:          "USEDUP",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: dec("10"),
		MaxUses:       &limit,
	})

	_, err := f.merger.Merge(context.Background(), domain.Request{
		FirstID:    f.a.ID.String(),
		SecondID:   f.b.ID.String(),
		CouponCode: "USEDUP",
	})
	require.Error(t, err)
	reason, ok := ierr.CouponReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ierr.CouponLimitExceeded, reason)

	f.assertUntouched(t)
	assert.EqualValues(t, 0, f.h.ReloadCoupon(t, coupon.ID).UsedCount)
}

func TestMergeRequiresIssuedSources(t *testing.T) {
	f := newFixture(t)
	client, err := f.h.Clients.Get(context.Background(), f.a.ClientID.String())
	require.NoError(t, err)
	p := f.h.Product(t, "Extra", "100", "0")
	draft := f.h.Draft(t, client, invoicetest.Item(p, "1"))

	_, err = f.merger.Merge(context.Background(), domain.Request{FirstID: f.a.ID.String(), SecondID: draft.ID.String()})
	assert.True(t, ierr.IsInvalidTransition(err))

	paid, err := f.h.Invoices.MarkPaid(context.Background(), invoicedomain.MarkPaidRequest{ID: f.b.ID.String()})
	require.NoError(t, err)
	_, err = f.merger.Merge(context.Background(), domain.Request{FirstID: f.a.ID.String(), SecondID: paid.ID.String()})
	assert.True(t, ierr.IsInvalidTransition(err))
	assert.Equal(t, invoicedomain.StatusIssued, f.h.Reload(t, f.a.ID).Status)
}

func TestMergeRejectsBadPairs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := f.h.Client(t, "Globex")
	p := f.h.Product(t, "Audit", "300", "0")
	foreign := f.h.Issued(t, other, invoicetest.Item(p, "1"))

	_, err := f.merger.Merge(ctx, domain.Request{FirstID: f.a.ID.String(), SecondID: foreign.ID.String()})
	assert.ErrorIs(t, err, domain.ErrClientMismatch)
	assert.True(t, ierr.IsConflict(err))

	_, err = f.merger.Merge(ctx, domain.Request{FirstID: f.a.ID.String(), SecondID: f.a.ID.String()})
	assert.ErrorIs(t, err, domain.ErrSameInvoice)

	// rejected before lookup, so an unknown id paired with itself is not a not-found
	_, err = f.merger.Merge(ctx, domain.Request{FirstID: "12345", SecondID: " 12345 "})
	assert.ErrorIs(t, err, domain.ErrSameInvoice)
	assert.True(t, ierr.IsValidation(err))

	_, err = f.merger.Merge(ctx, domain.Request{FirstID: f.a.ID.String(), SecondID: "missing"})
	assert.True(t, ierr.IsNotFound(err))

	negative := dec("-1")
	_, err = f.merger.Merge(ctx, domain.Request{FirstID: f.a.ID.String(), SecondID: f.b.ID.String(), Override: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidOverride)

	f.assertUntouched(t)
}

// racingRepo loses the supersede race on one invoice, as if it was paid
// between the checks and the write.
type racingRepo struct {
	invoicedomain.Repository
	lose snowflake.ID
}

func (r racingRepo) UpdateIfStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status invoicedomain.Status, fields map[string]any) (int64, error) {
	if id == r.lose {
		return 0, nil
	}
	return r.Repository.UpdateIfStatus(ctx, db, id, status, fields)
}

func TestMergeRollsBackWhenSourceChanges(t *testing.T) {
	f := newFixture(t)
	coupon := f.h.Coupon(t, coupondomain.CreateRequest{Code: "SAVE10", DiscountType: coupondomain.DiscountPercentage, DiscountValue: dec("10")})
	merger := newMerger(f.h, racingRepo{Repository: f.h.Repo, lose: f.b.ID})

	_, err := merger.Merge(context.Background(), domain.Request{
		FirstID:    f.a.ID.String(),
		SecondID:   f.b.ID.String(),
		CouponCode: "SAVE10",
	})
	assert.True(t, ierr.IsInvalidTransition(err))

	f.assertUntouched(t)
	assert.EqualValues(t, 0, f.h.ReloadCoupon(t, coupon.ID).UsedCount)

	client, err := f.h.Clients.Get(context.Background(), f.a.ClientID.String())
	require.NoError(t, err)
	p := f.h.Product(t, "Next", "10", "0")
	assert.Equal(t, "INV00003", f.h.Draft(t, client, invoicetest.Item(p, "1")).InvoiceNumber)
}
