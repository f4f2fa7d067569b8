package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicecore/internal/clock"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	"github.com/smallbiznis/invoicecore/internal/money"
	"github.com/smallbiznis/invoicecore/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	clock    clock.Clock
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		validate: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.HSN = strings.TrimSpace(req.HSN)

	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrInvalidName
	}
	if err := validatePricing(req.Rate, req.TaxRate); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	product := &domain.Product{
		ID:          s.genID.Generate(),
		Name:        req.Name,
		Description: req.Description,
		HSN:         req.HSN,
		Rate:        money.Round(req.Rate),
		TaxRate:     req.TaxRate,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, s.db, product); err != nil {
		s.log.Error("failed to create product", zap.Error(err))
		return nil, ierr.Storage(err)
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || productID == 0 {
		return nil, domain.ErrNotFound
	}

	product, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Product, error) {
	items, err := s.repo.FindAll(ctx, s.db, domain.ListFilter{
		Name:    req.Name,
		Active:  req.Active,
		SortBy:  req.SortBy,
		OrderBy: req.OrderBy,
	})
	if err != nil {
		return nil, ierr.Storage(err)
	}
	return items, nil
}

func (s *Service) Update(ctx context.Context, cmd domain.UpdateCommand) (*domain.Product, error) {
	product, err := s.Get(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		product.Name = name
		fields["name"] = name
	}
	if cmd.Description != nil {
		product.Description = strings.TrimSpace(*cmd.Description)
		fields["description"] = product.Description
	}
	if cmd.HSN != nil {
		product.HSN = strings.TrimSpace(*cmd.HSN)
		fields["hsn"] = product.HSN
	}
	if cmd.Rate != nil {
		product.Rate = money.Round(*cmd.Rate)
		fields["rate"] = product.Rate
	}
	if cmd.TaxRate != nil {
		product.TaxRate = *cmd.TaxRate
		fields["tax_rate"] = product.TaxRate
	}
	if err := validatePricing(product.Rate, product.TaxRate); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return product, nil
	}

	product.UpdatedAt = s.clock.Now()
	fields["updated_at"] = product.UpdatedAt
	if err := s.repo.UpdateFields(ctx, s.db, product.ID, fields); err != nil {
		return nil, ierr.Storage(err)
	}
	return product, nil
}

// Archive hides the product from new line items.
func (s *Service) Archive(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return product, nil
	}

	product.IsActive = false
	product.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateFields(ctx, s.db, product.ID, map[string]any{
		"is_active":  false,
		"updated_at": product.UpdatedAt,
	}); err != nil {
		return nil, ierr.Storage(err)
	}
	s.log.Info("product archived", zap.String("product_id", product.ID.String()))
	return product, nil
}

func validatePricing(rate, taxRate decimal.Decimal) error {
	if rate.IsNegative() {
		return domain.ErrInvalidRate
	}
	if taxRate.IsNegative() {
		return domain.ErrInvalidTaxRate
	}
	return nil
}
