package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time for scheduler and services so tests can control it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func NewSystemClock() Clock { return systemClock{} }

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return NewSystemClock() }),
)
