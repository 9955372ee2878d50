package sale

import (
	"github.com/tecnomade/clouget-pos/internal/sale/repository"
	"github.com/tecnomade/clouget-pos/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
