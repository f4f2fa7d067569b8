package coupon

import (
	"github.com/smallbiznis/invoicecore/internal/coupon/repository"
	"github.com/smallbiznis/invoicecore/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
