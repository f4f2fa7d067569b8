package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/company"
	"github.com/smallbiznis/invoicecore/internal/config"
	coupondomain "github.com/smallbiznis/invoicecore/internal/coupon/domain"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/invoicecore/internal/invoice/service"
	"github.com/smallbiznis/invoicecore/internal/merge/domain"
	"github.com/smallbiznis/invoicecore/internal/money"
	"github.com/smallbiznis/invoicecore/internal/observability/metrics"
	"github.com/smallbiznis/invoicecore/internal/sequence"
	"github.com/smallbiznis/invoicecore/internal/snapshot"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const resultOK = "ok"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Config    config.Config
	Sequence  sequence.Allocator
	Company   company.Provider
	Invoices  invoicedomain.Service
	Repo      invoicedomain.Repository
	ClientSvc clientdomain.Service
	Coupons   coupondomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	prefix    string
	dueDays   int
	sequence  sequence.Allocator
	company   company.Provider
	invoices  invoicedomain.Service
	repo      invoicedomain.Repository
	clientSvc clientdomain.Service
	coupons   coupondomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("merge.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		prefix:    p.Config.InvoicePrefix,
		dueDays:   p.Config.InvoiceDueDays,
		sequence:  p.Sequence,
		company:   p.Company,
		invoices:  p.Invoices,
		repo:      p.Repo,
		clientSvc: p.ClientSvc,
		coupons:   p.Coupons,
		metrics:   p.Metrics,
	}
}

// Merge replaces two ISSUED invoices with one new ISSUED invoice. Every
// check, including coupon validation, runs before the first write; the new
// invoice and both supersessions commit together, and the coupon is redeemed
// only after that commit.
func (s *Service) Merge(ctx context.Context, req domain.Request) (*invoicedomain.Invoice, error) {
	merged, err := s.merge(ctx, req)
	if err != nil && merged == nil {
		s.metrics.RecordInvoiceMerge(ctx, ierr.Kind(err))
		return nil, err
	}
	s.metrics.RecordInvoiceMerge(ctx, resultOK)
	return merged, err
}

func (s *Service) merge(ctx context.Context, req domain.Request) (*invoicedomain.Invoice, error) {
	if sameInvoice(req.FirstID, req.SecondID) {
		return nil, domain.ErrSameInvoice
	}
	first, err := s.invoices.Get(ctx, req.FirstID)
	if err != nil {
		return nil, err
	}
	second, err := s.invoices.Get(ctx, req.SecondID)
	if err != nil {
		return nil, err
	}
	for _, source := range []*invoicedomain.Invoice{first, second} {
		if !source.Status.Allows(invoicedomain.TransitionSupersede) {
			return nil, invoicedomain.InvalidTransition(source.Status, invoicedomain.TransitionSupersede)
		}
	}
	if first.ClientID != second.ClientID {
		return nil, domain.ErrClientMismatch
	}

	amount := first.Total.Add(second.Total)
	if req.Override != nil {
		if req.Override.IsNegative() {
			return nil, domain.ErrInvalidOverride
		}
		amount = money.Round(*req.Override)
	}

	var validation *coupondomain.Validation
	code := strings.TrimSpace(req.CouponCode)
	userID := strings.TrimSpace(req.UserID)
	if code != "" {
		validation, err = s.coupons.Validate(ctx, code, amount, userID)
		if err != nil {
			return nil, err
		}
	}
	final := amount
	if validation != nil {
		final = decimal.Max(decimal.Zero, amount.Sub(validation.Discount))
	}

	client, err := s.clientSvc.Get(ctx, first.ClientID.String())
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	snap, err := snapshot.Build(s.company.Profile(), client, now)
	if err != nil {
		return nil, err
	}
	due := invoiceservice.DueDate(now, s.dueDays)

	merged := &invoicedomain.Invoice{
		ID:       s.genID.Generate(),
		ClientID: first.ClientID,
		Items: datatypes.NewJSONSlice([]snapshot.LineItem{
			mergedLine(first),
			mergedLine(second),
		}),
		Subtotal:     final,
		TaxBreakup:   datatypes.NewJSONType(money.TaxBreakup{}),
		Total:        final,
		Status:       invoicedomain.StatusIssued,
		Snapshot:     snap,
		IssueDate:    &now,
		DueDate:      &due,
		MergedFrom:   datatypes.NewJSONSlice([]snowflake.ID{first.ID, second.ID}),
		MergedAmount: decimal.NewNullDecimal(amount),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if validation != nil {
		merged.Coupon = invoiceservice.NewCouponApplication(validation, userID, now)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.sequence.Next(ctx, tx, s.prefix)
		if err != nil {
			return err
		}
		merged.InvoiceNumber = number
		if err := s.repo.Insert(ctx, tx, merged); err != nil {
			return ierr.Storage(err)
		}

		for _, source := range []*invoicedomain.Invoice{first, second} {
			affected, err := s.repo.UpdateIfStatus(ctx, tx, source.ID, invoicedomain.StatusIssued, map[string]any{
				"status":     invoicedomain.StatusPaid,
				"paid_on":    now,
				"updated_at": now,
			})
			if err != nil {
				return ierr.Storage(err)
			}
			if affected == 0 {
				return invoicedomain.InvalidTransition(invoicedomain.StatusPaid, invoicedomain.TransitionSupersede)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to merge invoices",
			zap.String("first_id", first.ID.String()),
			zap.String("second_id", second.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("invoices merged",
		zap.String("invoice_id", merged.ID.String()),
		zap.String("invoice_number", merged.InvoiceNumber),
		zap.String("merged_amount", amount.StringFixed(money.Places)),
		zap.String("final", final.StringFixed(money.Places)),
	)

	if validation != nil {
		if err := s.coupons.Redeem(ctx, validation.CouponID, userID); err != nil {
			s.log.Error("invoices merged but coupon not redeemed",
				zap.String("invoice_id", merged.ID.String()),
				zap.String("coupon_code", validation.Code),
				zap.Error(err),
			)
			return merged, invoiceservice.RedeemFailed(validation.Code, err)
		}
	}
	return merged, nil
}

func sameInvoice(firstID, secondID string) bool {
	first, err := snowflake.ParseString(strings.TrimSpace(firstID))
	if err != nil {
		return false
	}
	second, err := snowflake.ParseString(strings.TrimSpace(secondID))
	return err == nil && first == second
}

func mergedLine(source *invoicedomain.Invoice) snapshot.LineItem {
	return snapshot.LineItem{
		Name:     fmt.Sprintf("Merged from invoice #%s", source.InvoiceNumber),
		Rate:     source.Total,
		TaxRate:  decimal.Zero,
		Quantity: decimal.NewFromInt(1),
	}
}
