// Package device транслирует подключение/отключение устройств: USB-хотплаг
// по GUID интерфейса и батарею по системному статусу питания. Классы
// различаются источником нативного уведомления, а не таймингом.
package device

import (
	"time"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

type Adapter struct {
	bus          *event.Bus
	logger       *zap.SugaredLogger
	pollInterval time.Duration

	battery batteryTracker
}

func New(bus *event.Bus, pollInterval time.Duration, logger *zap.SugaredLogger) *Adapter {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Adapter{bus: bus, logger: logger, pollInterval: pollInterval}
}

func (a *Adapter) Name() string { return "device" }

// batteryTracker сводит снимки статуса батареи к событиям. Первый снимок
// только фиксирует точку отсчёта: состояние на старте не озвучивается.
type batteryTracker struct {
	primed  bool
	present bool
	level   int
}

func (t *batteryTracker) update(present bool, level int) []event.Event {
	if !t.primed {
		t.primed = true
		t.present = present
		t.level = level
		return nil
	}

	var out []event.Event
	switch {
	case present != t.present:
		if present {
			out = append(out, event.NewDeviceChanged(event.ClassBattery, event.ActionInserted, level))
		} else {
			out = append(out, event.NewDeviceChanged(event.ClassBattery, event.ActionRemoved, event.LevelUnknown))
		}
	case present && level != t.level && level != event.LevelUnknown:
		out = append(out, event.NewBatteryLevel(level))
	}
	t.present = present
	t.level = level
	return out
}
