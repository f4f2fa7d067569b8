package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/coupon/domain"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	"github.com/smallbiznis/invoicecore/internal/money"
	"github.com/smallbiznis/invoicecore/internal/observability/metrics"
	"github.com/smallbiznis/invoicecore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const validationOK = "ok"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	clock    clock.Clock
	metrics  *metrics.Metrics
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("coupon.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		metrics:  p.Metrics,
		validate: validator.New(),
	}
}

func (s *Service) Validate(ctx context.Context, code string, amount decimal.Decimal, userID string) (*domain.Validation, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return nil, s.reject(ctx, ierr.CouponNotFound, normalized, "Coupon code not found.")
	}

	coupon, err := s.repo.FindByCode(ctx, s.db, normalized)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if coupon == nil {
		return nil, s.reject(ctx, ierr.CouponNotFound, normalized, "Coupon code not found.")
	}

	if err := s.check(ctx, coupon, amount, strings.TrimSpace(userID)); err != nil {
		return nil, err
	}

	discount := domain.Discount(coupon.DiscountType, coupon.DiscountValue, amount)
	s.metrics.RecordCouponValidation(ctx, validationOK)

	return &domain.Validation{
		CouponID: coupon.ID,
		Code:     coupon.Code,
		Type:     coupon.DiscountType,
		Value:    coupon.DiscountValue,
		Amount:   amount,
		Discount: discount,
		Final:    amount.Sub(discount),
	}, nil
}

// check applies the rejection rules in a fixed order; the first failure wins.
func (s *Service) check(ctx context.Context, c *domain.Coupon, amount decimal.Decimal, userID string) error {
	now := s.clock.Now()

	switch {
	case !c.IsActive:
		return s.reject(ctx, ierr.CouponInactive, c.Code, "This coupon is no longer active.")
	case userID != "" && lo.Contains(c.UsedBy, userID):
		return s.reject(ctx, ierr.CouponAlreadyUsed, c.Code, "You have already used this coupon.")
	case c.MaxUses != nil && c.UsedCount >= *c.MaxUses:
		return s.reject(ctx, ierr.CouponLimitExceeded, c.Code, "This coupon has reached its usage limit.")
	case c.ValidFrom != nil && now.Before(c.ValidFrom.UTC()):
		return s.reject(ctx, ierr.CouponNotYetValid, c.Code, "This coupon is not valid yet.")
	case c.ValidUntil != nil && now.After(c.ValidUntil.UTC()):
		return s.reject(ctx, ierr.CouponExpired, c.Code, "This coupon has expired.")
	case c.MinAmount.Valid && amount.LessThan(c.MinAmount.Decimal):
		return s.reject(ctx, ierr.CouponBelowMinimum, c.Code, "Minimum amount of "+money.Round(c.MinAmount.Decimal).StringFixed(money.Places)+" required for this coupon.")
	}
	return nil
}

func (s *Service) reject(ctx context.Context, reason ierr.CouponReason, code, message string) error {
	s.metrics.RecordCouponValidation(ctx, string(reason))
	s.log.Debug("coupon rejected", zap.String("code", code), zap.String("reason", string(reason)))
	return ierr.NewCouponError(reason, code, message)
}

func (s *Service) Redeem(ctx context.Context, couponID snowflake.ID, userID string) error {
	userID = strings.TrimSpace(userID)
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.IncrementUsage(ctx, tx, couponID, now)
		if err != nil {
			return ierr.Storage(err)
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		if userID == "" {
			return nil
		}

		coupon, err := s.repo.FindByID(ctx, tx, couponID)
		if err != nil {
			return ierr.Storage(err)
		}
		if coupon == nil {
			return domain.ErrNotFound
		}
		if lo.Contains(coupon.UsedBy, userID) {
			return nil
		}

		usedBy := append(lo.Compact([]string(coupon.UsedBy)), userID)
		if _, err := s.repo.UpdateFields(ctx, tx, couponID, map[string]any{
			"used_by":    datatypes.NewJSONSlice(usedBy),
			"updated_at": now,
		}); err != nil {
			return ierr.Storage(err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("failed to redeem coupon", zap.String("coupon_id", couponID.String()), zap.Error(err))
		return err
	}

	s.metrics.RecordCouponRedemption(ctx)
	s.log.Info("coupon redeemed", zap.String("coupon_id", couponID.String()), zap.Bool("with_user", userID != ""))
	return nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Coupon, error) {
	req.Code = domain.NormalizeCode(req.Code)
	req.Description = strings.TrimSpace(req.Description)

	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByCode(ctx, s.db, req.Code)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateCode
	}

	now := s.clock.Now()
	coupon := &domain.Coupon{
		ID:            s.genID.Generate(),
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		IsActive:      !req.Inactive,
		ValidFrom:     utcPtr(req.ValidFrom),
		ValidUntil:    utcPtr(req.ValidUntil),
		UsedBy:        datatypes.NewJSONSlice([]string{}),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.MinAmount != nil {
		coupon.MinAmount = decimal.NewNullDecimal(*req.MinAmount)
	}

	if err := s.repo.Insert(ctx, s.db, coupon); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, ierr.Storage(err)
	}

	s.log.Info("coupon created", zap.String("coupon_id", coupon.ID.String()), zap.String("code", coupon.Code))
	return coupon, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	couponID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || couponID == 0 {
		return nil, domain.ErrNotFound
	}

	coupon, err := s.repo.FindByID(ctx, s.db, couponID)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if coupon == nil {
		return nil, domain.ErrNotFound
	}
	return coupon, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return nil, domain.ErrNotFound
	}

	coupon, err := s.repo.FindByCode(ctx, s.db, normalized)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if coupon == nil {
		return nil, domain.ErrNotFound
	}
	return coupon, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Coupon, error) {
	coupons, err := s.repo.List(ctx, s.db, domain.ListFilter{Active: req.Active})
	if err != nil {
		return nil, ierr.Storage(err)
	}
	return coupons, nil
}

func (s *Service) Update(ctx context.Context, cmd domain.UpdateCommand) (*domain.Coupon, error) {
	coupon, err := s.Get(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if cmd.Description != nil {
		coupon.Description = strings.TrimSpace(*cmd.Description)
		fields["description"] = coupon.Description
	}
	if cmd.DiscountType != nil {
		coupon.DiscountType = *cmd.DiscountType
		fields["discount_type"] = coupon.DiscountType
	}
	if cmd.DiscountValue != nil {
		coupon.DiscountValue = *cmd.DiscountValue
		fields["discount_value"] = coupon.DiscountValue
	}
	switch {
	case cmd.ClearMaxUses:
		coupon.MaxUses = nil
		fields["max_uses"] = nil
	case cmd.MaxUses != nil:
		coupon.MaxUses = cmd.MaxUses
		fields["max_uses"] = *cmd.MaxUses
	}
	if cmd.IsActive != nil {
		coupon.IsActive = *cmd.IsActive
		fields["is_active"] = coupon.IsActive
	}
	switch {
	case cmd.ClearValidFrom:
		coupon.ValidFrom = nil
		fields["valid_from"] = nil
	case cmd.ValidFrom != nil:
		coupon.ValidFrom = utcPtr(cmd.ValidFrom)
		fields["valid_from"] = *coupon.ValidFrom
	}
	switch {
	case cmd.ClearValidUntil:
		coupon.ValidUntil = nil
		fields["valid_until"] = nil
	case cmd.ValidUntil != nil:
		coupon.ValidUntil = utcPtr(cmd.ValidUntil)
		fields["valid_until"] = *coupon.ValidUntil
	}
	switch {
	case cmd.ClearMinAmount:
		coupon.MinAmount = decimal.NullDecimal{}
		fields["min_amount"] = nil
	case cmd.MinAmount != nil:
		coupon.MinAmount = decimal.NewNullDecimal(*cmd.MinAmount)
		fields["min_amount"] = coupon.MinAmount
	}

	if err := s.validateTerms(coupon); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return coupon, nil
	}

	coupon.UpdatedAt = s.clock.Now()
	fields["updated_at"] = coupon.UpdatedAt
	if _, err := s.repo.UpdateFields(ctx, s.db, coupon.ID, fields); err != nil {
		return nil, ierr.Storage(err)
	}
	return coupon, nil
}

// Delete removes the coupon. Invoices keep the coupon details they copied.
func (s *Service) Delete(ctx context.Context, id string) error {
	coupon, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, coupon.ID)
	if err != nil {
		return ierr.Storage(err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.log.Info("coupon deleted", zap.String("coupon_id", coupon.ID.String()), zap.String("code", coupon.Code))
	return nil
}

func (s *Service) validateCreate(req domain.CreateRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ierr.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Code":
				return domain.ErrInvalidCode
			case "DiscountType":
				return domain.ErrInvalidDiscountType
			case "MaxUses":
				return domain.ErrInvalidLimit
			}
		}
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}

	terms := &domain.Coupon{
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MaxUses:       req.MaxUses,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
	}
	if req.MinAmount != nil {
		terms.MinAmount = decimal.NewNullDecimal(*req.MinAmount)
	}
	return s.validateTerms(terms)
}

func (s *Service) validateTerms(c *domain.Coupon) error {
	if !c.DiscountType.Valid() {
		return domain.ErrInvalidDiscountType
	}
	if !c.DiscountValue.IsPositive() {
		return domain.ErrInvalidDiscountValue
	}
	if c.DiscountType == domain.DiscountPercentage && c.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidDiscountValue
	}
	if c.ValidFrom != nil && c.ValidUntil != nil && !c.ValidFrom.Before(*c.ValidUntil) {
		return domain.ErrInvalidWindow
	}
	if c.MaxUses != nil && *c.MaxUses < 0 {
		return domain.ErrInvalidLimit
	}
	if c.MinAmount.Valid && c.MinAmount.Decimal.IsNegative() {
		return domain.ErrInvalidLimit
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
