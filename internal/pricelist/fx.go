package pricelist

import (
	"github.com/tecnomade/clouget-pos/internal/pricelist/repository"
	"github.com/tecnomade/clouget-pos/internal/pricelist/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricelist.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
