package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicecore/internal/authorization"
	"github.com/smallbiznis/invoicecore/internal/client"
	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/company"
	"github.com/smallbiznis/invoicecore/internal/config"
	"github.com/smallbiznis/invoicecore/internal/coupon"
	"github.com/smallbiznis/invoicecore/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/invoicecore/internal/dashboard/domain"
	"github.com/smallbiznis/invoicecore/internal/invoice"
	"github.com/smallbiznis/invoicecore/internal/merge"
	"github.com/smallbiznis/invoicecore/internal/migration"
	"github.com/smallbiznis/invoicecore/internal/observability"
	"github.com/smallbiznis/invoicecore/internal/product"
	"github.com/smallbiznis/invoicecore/internal/seed"
	"github.com/smallbiznis/invoicecore/internal/sequence"
	"github.com/smallbiznis/invoicecore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		company.Module,
		migration.Module,
		sequence.Module,

		// Domains
		client.Module,
		product.Module,
		coupon.Module,
		invoice.Module,
		merge.Module,
		dashboard.Module,
		authorization.Module,

		seed.Module,
		fx.Invoke(func(authorization.Service) {}),
		fx.Invoke(logSummary),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func logSummary(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, stats dashboarddomain.Service, profile company.Provider) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s, err := stats.Stats(ctx)
			if err != nil {
				return err
			}
			log.Info("invoicecore ready",
				zap.String("company", profile.Profile().Name),
				zap.String("db_type", cfg.DBType),
				zap.String("sequence_backend", cfg.SequenceBackend),
				zap.Int64("active_clients", s.ActiveClients),
				zap.Int64("active_products", s.ActiveProducts),
				zap.Int64("invoices", s.TotalInvoices),
				zap.String("revenue", s.Revenue.StringFixed(2)),
				zap.String("pending", s.Pending.StringFixed(2)),
			)
			return nil
		},
	})
}
