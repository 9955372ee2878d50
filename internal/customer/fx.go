package customer

import (
	"github.com/tecnomade/clouget-pos/internal/customer/repository"
	"github.com/tecnomade/clouget-pos/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
