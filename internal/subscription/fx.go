package subscription

import (
	"github.com/tecnomade/clouget-pos/internal/subscription/client"
	"github.com/tecnomade/clouget-pos/internal/subscription/repository"
	"github.com/tecnomade/clouget-pos/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(client.New),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
