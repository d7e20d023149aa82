package device

import (
	"testing"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
)

func TestBatteryTrackerPrimesWithoutEvents(t *testing.T) {
	var tr batteryTracker
	if evs := tr.update(true, 80); len(evs) != 0 {
		t.Fatalf("startup state must not be announced, got %d events", len(evs))
	}
}

func TestBatteryTrackerInsertRemove(t *testing.T) {
	var tr batteryTracker
	tr.update(false, event.LevelUnknown)

	evs := tr.update(true, 64)
	if len(evs) != 1 || evs[0].Kind != event.KindDeviceChanged || evs[0].Action != event.ActionInserted {
		t.Fatalf("expected inserted event, got %+v", evs)
	}
	if evs[0].Class != event.ClassBattery || evs[0].Level != 64 {
		t.Fatalf("unexpected inserted payload: %+v", evs[0])
	}

	evs = tr.update(false, event.LevelUnknown)
	if len(evs) != 1 || evs[0].Action != event.ActionRemoved {
		t.Fatalf("expected removed event, got %+v", evs)
	}
}

func TestBatteryTrackerLevelReport(t *testing.T) {
	var tr batteryTracker
	tr.update(true, 50)

	evs := tr.update(true, 49)
	if len(evs) != 1 || evs[0].Kind != event.KindBatteryLevel || evs[0].Level != 49 {
		t.Fatalf("expected level report, got %+v", evs)
	}

	// неизменившийся уровень и неизвестный уровень событий не дают
	if evs := tr.update(true, 49); len(evs) != 0 {
		t.Fatalf("expected no events for same level, got %+v", evs)
	}
	if evs := tr.update(true, event.LevelUnknown); len(evs) != 0 {
		t.Fatalf("expected no events for unknown level, got %+v", evs)
	}
}
