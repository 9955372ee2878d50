package notification

import (
	"github.com/tecnomade/clouget-pos/internal/notification/repository"
	"github.com/tecnomade/clouget-pos/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(RegisterIssuedSubscriber),
)
