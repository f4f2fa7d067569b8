package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/company"
	"github.com/smallbiznis/invoicecore/internal/config"
	coupondomain "github.com/smallbiznis/invoicecore/internal/coupon/domain"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	"github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/money"
	"github.com/smallbiznis/invoicecore/internal/observability/metrics"
	productdomain "github.com/smallbiznis/invoicecore/internal/product/domain"
	"github.com/smallbiznis/invoicecore/internal/sequence"
	"github.com/smallbiznis/invoicecore/internal/snapshot"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const transitionCreate = "create"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Clock     clock.Clock
	Config    config.Config
	Sequence  sequence.Allocator
	Company   company.Provider
	ClientSvc clientdomain.Service
	Products  productdomain.Service
	Coupons   coupondomain.Service
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	clock     clock.Clock
	prefix    string
	dueDays   int
	sequence  sequence.Allocator
	company   company.Provider
	clientSvc clientdomain.Service
	products  productdomain.Service
	coupons   coupondomain.Service
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		clock:     p.Clock,
		prefix:    p.Config.InvoicePrefix,
		dueDays:   p.Config.InvoiceDueDays,
		sequence:  p.Sequence,
		company:   p.Company,
		clientSvc: p.ClientSvc,
		products:  p.Products,
		coupons:   p.Coupons,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Invoice, error) {
	client, err := s.clientSvc.Get(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	items, totals, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	invoice := &domain.Invoice{
		ID:         s.genID.Generate(),
		ClientID:   client.ID,
		Items:      datatypes.NewJSONSlice(items),
		Subtotal:   totals.Subtotal,
		TaxBreakup: datatypes.NewJSONType(totals.TaxBreakup),
		Total:      totals.Total,
		Status:     domain.StatusDraft,
		MergedFrom: datatypes.NewJSONSlice([]snowflake.ID{}),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.sequence.Next(ctx, tx, s.prefix)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		if err := s.repo.Insert(ctx, tx, invoice); err != nil {
			return ierr.Storage(err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to create invoice", zap.String("client_id", client.ID.String()), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordInvoiceTransition(ctx, transitionCreate)
	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total", invoice.Total.StringFixed(money.Places)),
	)
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Invoice, error) {
	invoice, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.Allows(domain.TransitionUpdate) {
		return nil, domain.InvalidTransition(invoice.Status, domain.TransitionUpdate)
	}

	items, totals, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	affected, err := s.repo.UpdateIfStatus(ctx, s.db, invoice.ID, domain.StatusDraft, map[string]any{
		"items":       datatypes.NewJSONSlice(items),
		"subtotal":    totals.Subtotal,
		"tax_breakup": datatypes.NewJSONType(totals.TaxBreakup),
		"total":       totals.Total,
		"updated_at":  now,
	})
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if affected == 0 {
		return nil, s.lostRace(ctx, invoice.ID, domain.TransitionUpdate)
	}

	invoice.Items = datatypes.NewJSONSlice(items)
	invoice.Subtotal = totals.Subtotal
	invoice.TaxBreakup = datatypes.NewJSONType(totals.TaxBreakup)
	invoice.Total = totals.Total
	invoice.UpdatedAt = now

	s.metrics.RecordInvoiceTransition(ctx, string(domain.TransitionUpdate))
	return invoice, nil
}

func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.Invoice, error) {
	invoice, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	next, err := domain.Next(invoice.Status, domain.TransitionIssue)
	if err != nil {
		return nil, err
	}

	client, err := s.clientSvc.Get(ctx, invoice.ClientID.String())
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	snap, err := snapshot.Build(s.company.Profile(), client, now)
	if err != nil {
		return nil, err
	}

	issueDate, dueDate, err := s.dates(now, req.IssueDate, req.DueDate)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.UpdateIfStatus(ctx, s.db, invoice.ID, domain.StatusDraft, map[string]any{
		"status":     next,
		"snapshot":   snap,
		"issue_date": issueDate,
		"due_date":   dueDate,
		"updated_at": now,
	})
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if affected == 0 {
		return nil, s.lostRace(ctx, invoice.ID, domain.TransitionIssue)
	}

	invoice.Status = next
	invoice.Snapshot = snap
	invoice.IssueDate = &issueDate
	invoice.DueDate = &dueDate
	invoice.UpdatedAt = now

	s.metrics.RecordInvoiceTransition(ctx, string(domain.TransitionIssue))
	s.log.Info("invoice issued",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	return invoice, nil
}

// MarkPaid settles an issued invoice. With a coupon code the coupon is
// validated against the invoice total before anything is written, and
// redeemed only after the payment is stored. If that redemption fails the
// paid invoice is returned together with a storage-unavailable error.
func (s *Service) MarkPaid(ctx context.Context, req domain.MarkPaidRequest) (*domain.Invoice, error) {
	invoice, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	next, err := domain.Next(invoice.Status, domain.TransitionMarkPaid)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	paidOn := now
	if req.PaidOn != nil {
		paidOn = req.PaidOn.UTC()
	}

	var validation *coupondomain.Validation
	code := strings.TrimSpace(req.CouponCode)
	userID := strings.TrimSpace(req.UserID)
	if code != "" {
		validation, err = s.coupons.Validate(ctx, code, invoice.Total, userID)
		if err != nil {
			return nil, err
		}
	}

	fields := map[string]any{
		"status":     next,
		"paid_on":    paidOn,
		"updated_at": now,
	}
	var application *domain.CouponApplication
	if validation != nil {
		application = NewCouponApplication(validation, userID, now)
		fields["coupon"] = application
	}

	affected, err := s.repo.UpdateIfStatus(ctx, s.db, invoice.ID, domain.StatusIssued, fields)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if affected == 0 {
		return nil, s.lostRace(ctx, invoice.ID, domain.TransitionMarkPaid)
	}

	invoice.Status = next
	invoice.PaidOn = &paidOn
	invoice.Coupon = application
	invoice.UpdatedAt = now
	s.metrics.RecordInvoiceTransition(ctx, string(domain.TransitionMarkPaid))

	if validation != nil {
		if err := s.coupons.Redeem(ctx, validation.CouponID, userID); err != nil {
			s.log.Error("invoice paid but coupon not redeemed",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("coupon_code", validation.Code),
				zap.Error(err),
			)
			return invoice, RedeemFailed(validation.Code, err)
		}
	}

	s.log.Info("invoice paid",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Bool("coupon_applied", validation != nil),
	)
	return invoice, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoice, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !invoice.Status.Allows(domain.TransitionDelete) {
		return domain.InvalidTransition(invoice.Status, domain.TransitionDelete)
	}

	affected, err := s.repo.DeleteIfStatus(ctx, s.db, invoice.ID, domain.StatusDraft)
	if err != nil {
		return ierr.Storage(err)
	}
	if affected == 0 {
		return s.lostRace(ctx, invoice.ID, domain.TransitionDelete)
	}

	s.metrics.RecordInvoiceTransition(ctx, string(domain.TransitionDelete))
	s.log.Info("draft invoice deleted", zap.String("invoice_id", invoice.ID.String()))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

// GetByNumber looks an invoice up by its printed number, e.g. INV00042.
func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, domain.ErrNotFound
	}

	invoice, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Invoice, error) {
	filter := domain.ListFilter{}
	if req.Status != "" {
		status := domain.Status(strings.ToUpper(strings.TrimSpace(string(req.Status))))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	if strings.TrimSpace(req.ClientID) != "" {
		clientID, err := parseID(req.ClientID)
		if err != nil {
			return []domain.Invoice{}, nil
		}
		filter.ClientID = clientID
	}

	invoices, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	return invoices, nil
}

// buildItems copies each requested product into a line item and totals them.
func (s *Service) buildItems(ctx context.Context, inputs []domain.ItemInput) ([]snapshot.LineItem, money.Totals, error) {
	if len(inputs) == 0 {
		return nil, money.Totals{}, domain.ErrEmptyItems
	}

	items := make([]snapshot.LineItem, 0, len(inputs))
	lines := make([]money.Line, 0, len(inputs))
	for _, input := range inputs {
		if input.Quantity.IsNegative() {
			return nil, money.Totals{}, domain.ErrInvalidQuantity
		}
		product, err := s.products.Get(ctx, input.ProductID)
		if err != nil {
			return nil, money.Totals{}, err
		}
		item, err := snapshot.BuildItem(product, input.Quantity)
		if err != nil {
			return nil, money.Totals{}, err
		}
		items = append(items, item)
		lines = append(lines, money.Line{Rate: item.Rate, Quantity: item.Quantity, TaxRate: item.TaxRate})
	}

	totals, err := money.Calculate(lines)
	if err != nil {
		return nil, money.Totals{}, err
	}
	return items, totals, nil
}

func (s *Service) dates(now time.Time, issue, due *time.Time) (time.Time, time.Time, error) {
	issueDate := now
	if issue != nil {
		issueDate = issue.UTC()
	}
	dueDate := DueDate(issueDate, s.dueDays)
	if due != nil {
		dueDate = due.UTC()
	}
	if dueDate.Before(issueDate) {
		return time.Time{}, time.Time{}, domain.ErrInvalidDates
	}
	return issueDate, dueDate, nil
}

// lostRace reports why a guarded write changed nothing: the invoice is gone
// or moved to a state that no longer allows t.
func (s *Service) lostRace(ctx context.Context, id snowflake.ID, t domain.Transition) error {
	current, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return ierr.Storage(err)
	}
	if current == nil {
		return domain.ErrNotFound
	}
	return domain.InvalidTransition(current.Status, t)
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}
