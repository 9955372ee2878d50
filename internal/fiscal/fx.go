package fiscal

import (
	"github.com/tecnomade/clouget-pos/internal/fiscal/authority"
	"github.com/tecnomade/clouget-pos/internal/fiscal/repository"
	"github.com/tecnomade/clouget-pos/internal/fiscal/service"
	"github.com/tecnomade/clouget-pos/internal/fiscal/signer"
	"go.uber.org/fx"
)

var Module = fx.Module("fiscal.service",
	fx.Provide(repository.Provide),
	fx.Provide(authority.New),
	fx.Provide(signer.New),
	fx.Provide(service.New),
)
