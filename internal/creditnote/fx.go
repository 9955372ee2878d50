package creditnote

import (
	"github.com/tecnomade/clouget-pos/internal/creditnote/repository"
	"github.com/tecnomade/clouget-pos/internal/creditnote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("creditnote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
