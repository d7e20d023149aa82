// Package network следит за активным сетевым подключением и публикует
// события подключения/отключения с классифицированным типом интерфейса.
package network

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

// Link — снимок активного подключения.
type Link struct {
	Medium event.NetMedium
	Name   string
	SSID   string // только WiFi, best-effort
}

// prober достаёт снимок активного подключения из ОС; nil — подключения нет.
type prober interface {
	Active() (*Link, error)
}

type Adapter struct {
	bus      *event.Bus
	logger   *zap.SugaredLogger
	interval time.Duration
	probe    prober

	last *Link
}

func New(bus *event.Bus, pollInterval time.Duration, logger *zap.SugaredLogger) *Adapter {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &Adapter{bus: bus, logger: logger, interval: pollInterval, probe: newProber()}
}

func (a *Adapter) Name() string { return "network" }

// Run опрашивает активное подключение с фиксированным периодом и публикует
// события только при изменении снимка. Смена подключения даёт пару
// «отключено, затем подключено» — как ведёт себя и нативный монитор сети.
func (a *Adapter) Run(ctx context.Context) error {
	if a.probe == nil {
		return fmt.Errorf("%w: network introspection unavailable on this platform", adapter.ErrRegistration)
	}

	// точка отсчёта: состояние на старте не озвучивается
	if cur, err := a.probe.Active(); err == nil {
		a.last = cur
	}
	a.logger.Infow("Network monitoring started", "interval", a.interval.String())

	t := time.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-t.C:
		}

		cur, err := a.probe.Active()
		if err != nil {
			// одиночный сбой опроса не меняет известное состояние
			a.logger.Debugw("Network probe failed, skipping tick", "error", err)
			continue
		}
		if linksEqual(a.last, cur) {
			continue
		}
		if a.last != nil {
			a.bus.Publish(event.NewNetworkChanged(event.NetDisconnected, event.MediumUnknown, ""))
		}
		if cur != nil {
			a.bus.Publish(event.NewNetworkChanged(event.NetConnected, cur.Medium, cur.SSID))
		}
		a.last = cur
	}
}

func linksEqual(a, b *Link) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Medium == b.Medium && a.Name == b.Name && a.SSID == b.SSID
}

// IANA ifType: 6 — Ethernet, 71 — IEEE 802.11, 243/244 — WWAN.
func classify(ianaType uint32) event.NetMedium {
	switch ianaType {
	case 71:
		return event.MediumWiFi
	case 6:
		return event.MediumEthernet
	case 243, 244:
		return event.MediumCellular
	}
	return event.MediumUnknown
}

// pick выбирает одно активное подключение из кандидатов. При нескольких
// одновременных интерфейсах действует детерминированный приоритет
// WiFi > Ethernet > Cellular > прочее; внутри приоритета — первый по порядку
// перечисления ОС.
func pick(candidates []Link) *Link {
	if len(candidates) == 0 {
		return nil
	}
	rank := func(m event.NetMedium) int {
		switch m {
		case event.MediumWiFi:
			return 0
		case event.MediumEthernet:
			return 1
		case event.MediumCellular:
			return 2
		}
		return 3
	}
	best := 0
	for i := 1; i < len(candidates); i++ {
		if rank(candidates[i].Medium) < rank(candidates[best].Medium) {
			best = i
		}
	}
	return &candidates[best]
}
