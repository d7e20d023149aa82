package network

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		ianaType uint32
		want     event.NetMedium
	}{
		{71, event.MediumWiFi},
		{6, event.MediumEthernet},
		{243, event.MediumCellular},
		{244, event.MediumCellular},
		{24, event.MediumUnknown},
		{0, event.MediumUnknown},
	}
	for _, c := range cases {
		if got := classify(c.ianaType); got != c.want {
			t.Errorf("classify(%d) = %v, want %v", c.ianaType, got, c.want)
		}
	}
}

func TestPickPrefersWiFiOverWired(t *testing.T) {
	got := pick([]Link{
		{Medium: event.MediumEthernet, Name: "eth0"},
		{Medium: event.MediumWiFi, Name: "wlan0", SSID: "HomeNet"},
		{Medium: event.MediumCellular, Name: "wwan0"},
	})
	if got == nil || got.Medium != event.MediumWiFi {
		t.Fatalf("pick = %+v, want WiFi link", got)
	}
}

func TestPickEmpty(t *testing.T) {
	if got := pick(nil); got != nil {
		t.Fatalf("pick(nil) = %+v, want nil", got)
	}
}

type fakeProbe struct {
	mu   sync.Mutex
	link *Link
}

func (f *fakeProbe) set(l *Link) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.link = l
}

func (f *fakeProbe) Active() (*Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.link, nil
}

func waitEvents(t *testing.T, bus *event.Bus, n int) []event.Event {
	t.Helper()
	var got []event.Event
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got = append(got, bus.Drain()...)
		if len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, got %d: %+v", n, len(got), got)
	return nil
}

func TestRunPublishesOnSwitch(t *testing.T) {
	bus := event.NewBus(16)
	probe := &fakeProbe{link: &Link{Medium: event.MediumEthernet, Name: "eth0"}}
	a := New(bus, 10*time.Millisecond, zap.NewNop().Sugar())
	a.probe = probe

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	// стартовый снимок не озвучивается; смена на WiFi даёт пару событий
	time.Sleep(30 * time.Millisecond)
	if got := bus.Drain(); len(got) != 0 {
		t.Fatalf("unexpected events before any change: %+v", got)
	}

	probe.set(&Link{Medium: event.MediumWiFi, Name: "wlan0", SSID: "HomeNet"})
	got := waitEvents(t, bus, 2)
	if got[0].Net != event.NetDisconnected {
		t.Errorf("first event = %+v, want disconnect", got[0])
	}
	if got[1].Net != event.NetConnected || got[1].Medium != event.MediumWiFi || got[1].SSID != "HomeNet" {
		t.Errorf("second event = %+v, want WiFi connect with SSID", got[1])
	}

	probe.set(nil)
	got = waitEvents(t, bus, 1)
	if got[0].Net != event.NetDisconnected {
		t.Errorf("event after link loss = %+v, want disconnect", got[0])
	}
}
