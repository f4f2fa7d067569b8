// Package seed loads a small demo catalog into an empty database.
package seed

import (
	"context"

	"github.com/shopspring/decimal"
	clientdomain "github.com/smallbiznis/invoicecore/internal/client/domain"
	"github.com/smallbiznis/invoicecore/internal/config"
	coupondomain "github.com/smallbiznis/invoicecore/internal/coupon/domain"
	ierr "github.com/smallbiznis/invoicecore/internal/errors"
	productdomain "github.com/smallbiznis/invoicecore/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// MarkerCoupon is created last; its presence means the demo data is loaded.
const MarkerCoupon = "WELCOME10"

var Module = fx.Module("seed",
	fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, p Params) {
		if !cfg.SeedDemoData {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return Run(ctx, p)
			},
		})
	}),
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clients  clientdomain.Service
	Products productdomain.Service
	Coupons  coupondomain.Service
}

var demoClients = []clientdomain.CreateRequest{
	{
		CompanyName:    "Acme Traders Pvt Ltd",
		TaxID:          "27AAACA1234A1Z5",
		BillingAddress: "4 Marine Drive, Mumbai 400002",
		ContactPerson:  "Asha Rao",
		ContactEmail:   "accounts@acme.example",
	},
	{
		CompanyName:    "Globex Retail LLP",
		TaxID:          "29AAFCG5678B1Z2",
		BillingAddress: "88 Residency Road, Bengaluru 560025",
		ContactPerson:  "Vikram Shah",
		ContactEmail:   "finance@globex.example",
	},
}

var demoProducts = []productdomain.CreateRequest{
	{Name: "Website design", HSN: "998314", Rate: decimal.NewFromInt(25000), TaxRate: decimal.NewFromInt(18)},
	{Name: "Managed hosting (monthly)", HSN: "998315", Rate: decimal.NewFromInt(1500), TaxRate: decimal.NewFromInt(18)},
	{Name: "Printed brochures (100)", HSN: "4911", Rate: decimal.NewFromInt(3200), TaxRate: decimal.NewFromInt(12)},
}

// Run creates the demo clients, products and coupon unless the marker
// coupon already exists.
func Run(ctx context.Context, p Params) error {
	log := p.Log.Named("seed")

	if _, err := p.Coupons.GetByCode(ctx, MarkerCoupon); err == nil {
		log.Info("demo data already present")
		return nil
	} else if !ierr.IsNotFound(err) {
		return err
	}

	for _, req := range demoClients {
		if _, err := p.Clients.Create(ctx, req); err != nil {
			return err
		}
	}
	for _, req := range demoProducts {
		if _, err := p.Products.Create(ctx, req); err != nil {
			return err
		}
	}

	maxUses := int64(100)
	if _, err := p.Coupons.Create(ctx, coupondomain.CreateRequest{
		Code:          MarkerCoupon,
		Description:   "10% off for new clients",
		DiscountType:  coupondomain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MaxUses:       &maxUses,
	}); err != nil {
		return err
	}

	log.Info("demo data seeded",
		zap.Int("clients", len(demoClients)),
		zap.Int("products", len(demoProducts)),
	)
	return nil
}
