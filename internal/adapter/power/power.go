// Package power транслирует переключения источника питания (сеть/батарея)
// в нормализованные события.
package power

import (
	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

type Adapter struct {
	bus    *event.Bus
	logger *zap.SugaredLogger
}

func New(bus *event.Bus, logger *zap.SugaredLogger) *Adapter {
	return &Adapter{bus: bus, logger: logger}
}

func (a *Adapter) Name() string { return "power" }
