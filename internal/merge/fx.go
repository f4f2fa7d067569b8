package merge

import (
	"github.com/smallbiznis/invoicecore/internal/merge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("merge.service",
	fx.Provide(service.New),
)
