package expense

import (
	"github.com/tecnomade/clouget-pos/internal/expense/service"
	"go.uber.org/fx"
)

var Module = fx.Module("expense.service",
	fx.Provide(service.New),
)
