package invoice

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/faktur/internal/invoice/number"
	"github.com/smallbiznis/faktur/internal/invoice/repository"
	"github.com/smallbiznis/faktur/internal/invoice/service"
)

// Module wires the invoice feature.
var Module = fx.Module("invoice.service",
	fx.Provide(number.NewAllocator),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
