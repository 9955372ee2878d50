package product

import (
	"github.com/tecnomade/clouget-pos/internal/product/repository"
	"github.com/tecnomade/clouget-pos/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
