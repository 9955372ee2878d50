package cashsession

import (
	"github.com/tecnomade/clouget-pos/internal/cashsession/repository"
	"github.com/tecnomade/clouget-pos/internal/cashsession/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cashsession.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
