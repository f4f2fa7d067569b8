package company

import "go.uber.org/fx"

var Module = fx.Module("company",
	fx.Provide(
		NewHolder,
		func(h *Holder) Provider { return h },
	),
)
