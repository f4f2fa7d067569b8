package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicecore/internal/dashboard/domain"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	invoicedomain "github.com/smallbiznis/invoicecore/internal/invoice/domain"
	"github.com/smallbiznis/invoicecore/internal/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("dashboard.service"),
	}
}

type statusRow struct {
	Status invoicedomain.Status `gorm:"column:status"`
	Count  int64                `gorm:"column:count"`
	Amount decimal.Decimal      `gorm:"column:amount"`
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	var counts struct {
		ActiveClients  int64 `gorm:"column:active_clients"`
		ActiveProducts int64 `gorm:"column:active_products"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT
		   (SELECT COUNT(*) FROM clients WHERE is_active = ?) AS active_clients,
		   (SELECT COUNT(*) FROM products WHERE is_active = ?) AS active_products`,
		true,
		true,
	).Scan(&counts).Error; err != nil {
		return domain.Stats{}, ierr.Storage(err)
	}

	invoices, err := s.invoiceStats(ctx, 0)
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		ActiveClients:  counts.ActiveClients,
		ActiveProducts: counts.ActiveProducts,
		InvoiceStats:   invoices,
	}, nil
}

// ClientStats returns the invoice figures of one client. An unknown client
// is not-found; a known client without invoices gets zeroes.
func (s *Service) ClientStats(ctx context.Context, clientID string) (domain.InvoiceStats, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(clientID))
	if err != nil || id == 0 {
		return domain.InvoiceStats{}, domain.ErrClientNotFound
	}

	var exists int64
	if err := s.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM clients WHERE id = ?`, id).Scan(&exists).Error; err != nil {
		return domain.InvoiceStats{}, ierr.Storage(err)
	}
	if exists == 0 {
		return domain.InvoiceStats{}, domain.ErrClientNotFound
	}

	return s.invoiceStats(ctx, id)
}

func (s *Service) invoiceStats(ctx context.Context, clientID snowflake.ID) (domain.InvoiceStats, error) {
	query := s.db.WithContext(ctx).
		Table("invoices").
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS amount").
		Group("status")
	if clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}

	var rows []statusRow
	if err := query.Scan(&rows).Error; err != nil {
		return domain.InvoiceStats{}, ierr.Storage(err)
	}

	stats := domain.InvoiceStats{
		ByStatus: map[invoicedomain.Status]int64{
			invoicedomain.StatusDraft:  0,
			invoicedomain.StatusIssued: 0,
			invoicedomain.StatusPaid:   0,
		},
		Revenue: decimal.Zero,
		Pending: decimal.Zero,
	}
	for _, row := range rows {
		stats.TotalInvoices += row.Count
		stats.ByStatus[row.Status] = row.Count
		switch row.Status {
		case invoicedomain.StatusPaid:
			stats.Revenue = money.Round(row.Amount)
		case invoicedomain.StatusIssued:
			stats.Pending = money.Round(row.Amount)
		}
	}
	return stats, nil
}
