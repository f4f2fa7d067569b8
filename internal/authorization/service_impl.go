package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/samber/lo"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectInvoice   = "invoice"
	ObjectCoupon    = "coupon"
	ObjectClient    = "client"
	ObjectProduct   = "product"
	ObjectDashboard = "dashboard"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionIssue  = "issue"
	ActionPay    = "pay"
	ActionMerge  = "merge"
	ActionManage = "manage"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the embedded RBAC model, stores policies through the
// gorm adapter and seeds the built-in role grants.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor Actor, object string, action string) error {
	subject, roleName, err := resolveActor(actor)
	if err != nil {
		return err
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrPermissionDenied
	}
	return nil
}

// CanView allows owners to see every invoice and client actors only the
// invoices billed to their own client.
func (s *ServiceImpl) CanView(ctx context.Context, actor Actor, invoice *invoicedomain.Invoice) error {
	if err := s.Authorize(ctx, actor, ObjectInvoice, ActionView); err != nil {
		return err
	}
	if !owns(actor, invoice) {
		return ErrPermissionDenied
	}
	return nil
}

func (s *ServiceImpl) CanEdit(ctx context.Context, actor Actor, invoice *invoicedomain.Invoice) error {
	if err := s.Authorize(ctx, actor, ObjectInvoice, ActionUpdate); err != nil {
		return err
	}
	if !invoice.Status.Allows(invoicedomain.TransitionUpdate) {
		return invoicedomain.InvalidTransition(invoice.Status, invoicedomain.TransitionUpdate)
	}
	return nil
}

func (s *ServiceImpl) CanDelete(ctx context.Context, actor Actor, invoice *invoicedomain.Invoice) error {
	if err := s.Authorize(ctx, actor, ObjectInvoice, ActionDelete); err != nil {
		return err
	}
	if !invoice.Status.Allows(invoicedomain.TransitionDelete) {
		return invoicedomain.InvalidTransition(invoice.Status, invoicedomain.TransitionDelete)
	}
	return nil
}

// FilterInvoices drops the invoices actor may not view. An actor without
// view permission gets an empty list.
func (s *ServiceImpl) FilterInvoices(ctx context.Context, actor Actor, invoices []invoicedomain.Invoice) ([]invoicedomain.Invoice, error) {
	if err := s.Authorize(ctx, actor, ObjectInvoice, ActionView); err != nil {
		if ierr.IsPermissionDenied(err) {
			return []invoicedomain.Invoice{}, nil
		}
		return nil, err
	}
	return lo.Filter(invoices, func(inv invoicedomain.Invoice, _ int) bool {
		return owns(actor, &inv)
	}), nil
}

func owns(actor Actor, invoice *invoicedomain.Invoice) bool {
	if actor.Role == RoleOwner {
		return true
	}
	return actor.ClientID != 0 && invoice.ClientID == actor.ClientID
}

func resolveActor(actor Actor) (string, string, error) {
	userID := strings.TrimSpace(actor.UserID)
	if userID == "" {
		return "", "", ErrInvalidActor
	}
	role := Role(strings.ToLower(strings.TrimSpace(string(actor.Role))))
	switch role {
	case RoleOwner, RoleClient:
	default:
		return "", "", ErrInvalidActor
	}
	return fmt.Sprintf("user:%s", userID), fmt.Sprintf("role:%s", role), nil
}

// ensureGrouping links subject to roleName, replacing any other role it held.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:owner", ObjectInvoice, ActionView},
		{"role:owner", ObjectInvoice, ActionCreate},
		{"role:owner", ObjectInvoice, ActionUpdate},
		{"role:owner", ObjectInvoice, ActionDelete},
		{"role:owner", ObjectInvoice, ActionIssue},
		{"role:owner", ObjectInvoice, ActionPay},
		{"role:owner", ObjectInvoice, ActionMerge},
		{"role:owner", ObjectCoupon, ActionManage},
		{"role:owner", ObjectClient, ActionManage},
		{"role:owner", ObjectProduct, ActionManage},
		{"role:owner", ObjectDashboard, ActionView},

		// Clients only read, and only their own invoices.
		{"role:client", ObjectInvoice, ActionView},
		{"role:client", ObjectDashboard, ActionView},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
