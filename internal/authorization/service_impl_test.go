package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer(testutil.NewDB(t))
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

var (
	owner  = Actor{UserID: "1", Role: RoleOwner}
	client = Actor{UserID: "2", Role: RoleClient, ClientID: snowflake.ID(42)}
)

func TestOwnerMayDoEverything(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionIssue, ActionPay, ActionMerge} {
		assert.NoError(t, svc.Authorize(ctx, owner, ObjectInvoice, action), action)
	}
	assert.NoError(t, svc.Authorize(ctx, owner, ObjectCoupon, ActionManage))
	assert.NoError(t, svc.Authorize(ctx, owner, ObjectDashboard, ActionView))
}

func TestClientIsReadOnly(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, client, ObjectInvoice, ActionView))
	assert.NoError(t, svc.Authorize(ctx, client, ObjectDashboard, ActionView))

	for _, action := range []string{ActionCreate, ActionUpdate, ActionDelete, ActionIssue, ActionPay, ActionMerge} {
		err := svc.Authorize(ctx, client, ObjectInvoice, action)
		assert.True(t, ierr.IsPermissionDenied(err), action)
	}
	assert.ErrorIs(t, svc.Authorize(ctx, client, ObjectCoupon, ActionManage), ErrPermissionDenied)
}

func TestRoleChangeReplacesGrouping(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	promoted := Actor{UserID: "2", Role: RoleOwner}

	require.NoError(t, svc.Authorize(ctx, promoted, ObjectInvoice, ActionDelete))
	assert.ErrorIs(t, svc.Authorize(ctx, client, ObjectInvoice, ActionDelete), ErrPermissionDenied)
}

func TestInvalidActor(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, Actor{Role: RoleOwner}, ObjectInvoice, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, Actor{UserID: "9", Role: "admin"}, ObjectInvoice, ActionView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, owner, "", ActionView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, owner, ObjectInvoice, " "), ErrInvalidAction)
}

func TestCanViewScopesClients(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	mine := &invoicedomain.Invoice{ClientID: 42, Status: invoicedomain.StatusIssued}
	theirs := &invoicedomain.Invoice{ClientID: 7, Status: invoicedomain.StatusIssued}

	assert.NoError(t, svc.CanView(ctx, client, mine))
	assert.ErrorIs(t, svc.CanView(ctx, client, theirs), ErrPermissionDenied)
	assert.NoError(t, svc.CanView(ctx, owner, theirs))
}

func TestCanEditAndDeleteFollowStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	draft := &invoicedomain.Invoice{ClientID: 42, Status: invoicedomain.StatusDraft}
	issued := &invoicedomain.Invoice{ClientID: 42, Status: invoicedomain.StatusIssued}

	assert.NoError(t, svc.CanEdit(ctx, owner, draft))
	assert.NoError(t, svc.CanDelete(ctx, owner, draft))
	assert.True(t, ierr.IsInvalidTransition(svc.CanEdit(ctx, owner, issued)))
	assert.True(t, ierr.IsInvalidTransition(svc.CanDelete(ctx, owner, issued)))

	assert.ErrorIs(t, svc.CanEdit(ctx, client, draft), ErrPermissionDenied)
	assert.ErrorIs(t, svc.CanDelete(ctx, client, draft), ErrPermissionDenied)
}

func TestFilterInvoices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	invoices := []invoicedomain.Invoice{
		{ID: 1, ClientID: 42},
		{ID: 2, ClientID: 7},
		{ID: 3, ClientID: 42},
	}

	visible, err := svc.FilterInvoices(ctx, client, invoices)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, snowflake.ID(1), visible[0].ID)
	assert.Equal(t, snowflake.ID(3), visible[1].ID)

	all, err := svc.FilterInvoices(ctx, owner, invoices)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stranger := Actor{UserID: "5", Role: RoleClient}
	none, err := svc.FilterInvoices(ctx, stranger, invoices)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSeedingIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	_, err := NewEnforcer(db)
	require.NoError(t, err)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	policies, err := enforcer.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, 13)
}
