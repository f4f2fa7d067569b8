package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/clock"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
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
		log:      p.Log.Named("client.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		validate: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Client, error) {
	req = normalizeCreate(req)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	client := &domain.Client{
		ID:             s.genID.Generate(),
		CompanyName:    req.CompanyName,
		TaxID:          req.TaxID,
		BillingAddress: req.BillingAddress,
		ContactPerson:  req.ContactPerson,
		ContactEmail:   req.ContactEmail,
		ContactPhone:   req.ContactPhone,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, client); err != nil {
		s.log.Error("failed to insert client", zap.Error(err))
		return nil, ierr.Storage(err)
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()))
	return client, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Client, error) {
	clientID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.FindByID(ctx, s.db, clientID)
	if err != nil {
		return nil, ierr.Storage(err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Client, error) {
	clients, err := s.repo.List(ctx, s.db, domain.ListFilter{
		CompanyName: strings.ToLower(strings.TrimSpace(req.CompanyName)),
		Active:      req.Active,
	})
	if err != nil {
		return nil, ierr.Storage(err)
	}
	return clients, nil
}

func (s *Service) Update(ctx context.Context, cmd domain.UpdateCommand) (*domain.Client, error) {
	client, err := s.Get(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if cmd.CompanyName != nil {
		client.CompanyName = strings.TrimSpace(*cmd.CompanyName)
	}
	if cmd.TaxID != nil {
		client.TaxID = strings.ToUpper(strings.TrimSpace(*cmd.TaxID))
	}
	if cmd.BillingAddress != nil {
		client.BillingAddress = strings.TrimSpace(*cmd.BillingAddress)
	}
	if cmd.ContactPerson != nil {
		client.ContactPerson = strings.TrimSpace(*cmd.ContactPerson)
	}
	if cmd.ContactEmail != nil {
		client.ContactEmail = strings.ToLower(strings.TrimSpace(*cmd.ContactEmail))
	}
	if cmd.ContactPhone != nil {
		client.ContactPhone = strings.TrimSpace(*cmd.ContactPhone)
	}

	if err := s.validateRequest(domain.CreateRequest{
		CompanyName:    client.CompanyName,
		BillingAddress: client.BillingAddress,
		ContactEmail:   client.ContactEmail,
	}); err != nil {
		return nil, err
	}

	client.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return nil, ierr.Storage(err)
	}
	return client, nil
}

// Deactivate hides the client from new invoices. Issued invoices keep their
// snapshot so nothing else changes.
func (s *Service) Deactivate(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return client, nil
	}

	client.IsActive = false
	client.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, client); err != nil {
		return nil, ierr.Storage(err)
	}
	s.log.Info("client deactivated", zap.String("client_id", client.ID.String()))
	return client, nil
}

func (s *Service) validateRequest(req domain.CreateRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !ierr.As(err, &verrs) || len(verrs) == 0 {
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
	switch verrs[0].Field() {
	case "CompanyName":
		return domain.ErrInvalidCompanyName
	case "BillingAddress":
		return domain.ErrInvalidBillingAddress
	case "ContactEmail":
		return domain.ErrInvalidEmail
	default:
		return ierr.WithError(err).Mark(ierr.ErrValidation)
	}
}

func normalizeCreate(req domain.CreateRequest) domain.CreateRequest {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.TaxID = strings.ToUpper(strings.TrimSpace(req.TaxID))
	req.BillingAddress = strings.TrimSpace(req.BillingAddress)
	req.ContactPerson = strings.TrimSpace(req.ContactPerson)
	req.ContactEmail = strings.ToLower(strings.TrimSpace(req.ContactEmail))
	req.ContactPhone = strings.TrimSpace(req.ContactPhone)
	return req
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}
