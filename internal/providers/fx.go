package providers

import (
	"github.com/tecnomade/clouget-pos/internal/providers/email"
	"github.com/tecnomade/clouget-pos/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	fx.Provide(pdf.New),
)
