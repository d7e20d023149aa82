// Package sleep транслирует переходы сна/пробуждения системы.
package sleep

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

func (a *Adapter) Name() string { return "sleep" }
