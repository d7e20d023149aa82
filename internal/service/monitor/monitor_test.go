package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/phrase"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts"
)

// recordingSpeaker собирает фразы вместо синтеза; seq хранит порядок
// вызовов Speak/Flush.
type recordingSpeaker struct {
	mu         sync.Mutex
	utterances []tts.Utterance
	flushes    int
	seq        []string
}

func (s *recordingSpeaker) Speak(u tts.Utterance) {
	s.mu.Lock()
	s.utterances = append(s.utterances, u)
	s.seq = append(s.seq, "speak:"+u.Text)
	s.mu.Unlock()
}

func (s *recordingSpeaker) Flush() {
	s.mu.Lock()
	s.flushes++
	s.seq = append(s.seq, "flush")
	s.mu.Unlock()
}

func (s *recordingSpeaker) spoken() []tts.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tts.Utterance, len(s.utterances))
	copy(out, s.utterances)
	return out
}

func testPhrases() *phrase.Resolver {
	return phrase.New(phrase.Table{
		"en": {
			"system_online":             "Welcome, {user}. All systems online.",
			"system_going_to_sleep":     "Going to sleep.",
			"system_resumed_from_sleep": "All systems back online.",
			"external_power_connected":  "External power connected.",
			"switched_to_battery":       "Switched to battery power.",
			"battery_inserted":          "Battery inserted. Level {level} percent.",
			"battery_inserted_unknown":  "Battery inserted.",
			"battery_removed":           "Battery removed.",
			"battery_level_report":      "Battery level is {level} percent.",
			"usb_device_detected":       "USB device detected.",
			"usb_device_disconnected":   "USB device disconnected.",
			"network_connected_wifi":    "Connected to Wi-Fi network {ssid}",
			"network_connected_ethernet": "Wired network connected.",
			"network_disconnected":      "Network disconnected.",
		},
	}, "en")
}

func newTestMonitor(speaker Speaker) *Monitor {
	cfg := Config{Locale: "en", DebounceWindow: 2 * time.Second, ResumeGrace: 5 * time.Second}
	return New(cfg, event.NewBus(16), speaker, testPhrases(), zap.NewNop().Sugar())
}

func deviceEvent(class event.DeviceClass, action event.DeviceAction, level int, at time.Time) event.Event {
	return event.Event{Kind: event.KindDeviceChanged, At: at, Class: class, Action: action, Level: level}
}

func TestDebounceCoalescesSameClassPair(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()

	m.handleEvent(deviceEvent(event.ClassBattery, event.ActionInserted, 80, base))
	m.handleEvent(deviceEvent(event.ClassBattery, event.ActionInserted, 80, base.Add(50*time.Millisecond)))

	got := speaker.spoken()
	if len(got) != 1 {
		t.Fatalf("expected exactly one forwarded event, got %d", len(got))
	}
	if got[0].Text != "Battery inserted. Level 80 percent." {
		t.Fatalf("unexpected text: %q", got[0].Text)
	}
}

func TestDebounceAllowsAfterWindow(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()

	m.handleEvent(deviceEvent(event.ClassBattery, event.ActionInserted, 80, base))
	m.handleEvent(deviceEvent(event.ClassBattery, event.ActionRemoved, event.LevelUnknown, base.Add(3*time.Second)))

	if got := speaker.spoken(); len(got) != 2 {
		t.Fatalf("expected both events forwarded, got %d", len(got))
	}
}

func TestDebounceTracksClassesIndependently(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()

	m.handleEvent(deviceEvent(event.ClassBattery, event.ActionInserted, 50, base))
	m.handleEvent(deviceEvent(event.ClassUsb, event.ActionInserted, event.LevelUnknown, base.Add(50*time.Millisecond)))

	if got := speaker.spoken(); len(got) != 2 {
		t.Fatalf("expected usb event unaffected by battery debounce, got %d", len(got))
	}
}

func TestSleepStormSuppressed(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()
	m.now = func() time.Time { return base }

	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseEntering, At: base})
	for i := 0; i < 10; i++ {
		m.handleEvent(deviceEvent(event.ClassUsb, event.ActionInserted, event.LevelUnknown, base.Add(time.Duration(i)*100*time.Millisecond)))
	}
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseResuming, At: base.Add(2 * time.Second)})

	got := speaker.spoken()
	if len(got) != 2 {
		t.Fatalf("expected only the sleep and resume notices, got %d utterances", len(got))
	}
	if got[0].Priority != tts.PriorityControl || got[0].Text != "Going to sleep." {
		t.Fatalf("unexpected sleep utterance: %+v", got[0])
	}
	if got[1].Priority != tts.PriorityControl || got[1].Text != "All systems back online." {
		t.Fatalf("unexpected resume utterance: %+v", got[1])
	}
	speaker.mu.Lock()
	flushes := speaker.flushes
	seq := append([]string(nil), speaker.seq...)
	speaker.mu.Unlock()
	if flushes != 1 {
		t.Fatalf("expected one dispatcher flush on sleep entry, got %d", flushes)
	}
	// уведомление об уходе в сон ставится в очередь до Flush и переживает его
	if len(seq) < 2 || seq[0] != "speak:Going to sleep." || seq[1] != "flush" {
		t.Fatalf("expected sleep notice queued before flush, sequence: %v", seq)
	}
}

func TestQuickSleepCycleWithinGraceStillResumes(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()
	now := base
	m.now = func() time.Time { return now }

	// первый цикл сна
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseEntering, At: base})
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseResuming, At: base})

	// второй цикл целиком внутри окна тишины первого пробуждения
	now = base.Add(time.Second)
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseEntering, At: now})
	now = base.Add(3 * time.Second)
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseResuming, At: now})

	if m.state != StateActive {
		t.Fatalf("expected active state after second resume, got %v", m.state)
	}

	// после второго пробуждения обычные события снова озвучиваются
	m.handleEvent(event.Event{Kind: event.KindPowerChanged, Source: event.SourceAC, At: base.Add(100 * time.Second)})
	got := speaker.spoken()
	if len(got) == 0 || got[len(got)-1].Text != "External power connected." {
		t.Fatalf("expected normal event spoken after quick sleep cycle, got %+v", got)
	}

	resumes := 0
	for _, u := range got {
		if u.Text == "All systems back online." {
			resumes++
		}
	}
	if resumes != 2 {
		t.Fatalf("expected a resume notice per genuine wake, got %d", resumes)
	}
}

func TestPostResumeGraceSuppressesNormalEvents(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()
	m.now = func() time.Time { return base }

	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseEntering, At: base.Add(-time.Second)})
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseResuming, At: base})

	// шторм ре-энумерации в пределах окна тишины
	m.handleEvent(deviceEvent(event.ClassUsb, event.ActionInserted, event.LevelUnknown, base.Add(time.Second)))
	m.handleEvent(event.Event{Kind: event.KindPowerChanged, Source: event.SourceAC, At: base.Add(2 * time.Second)})
	// а это уже после окна
	m.handleEvent(event.Event{Kind: event.KindPowerChanged, Source: event.SourceAC, At: base.Add(6 * time.Second)})

	got := speaker.spoken()
	if len(got) != 3 {
		t.Fatalf("expected sleep and resume notices plus one late event, got %d", len(got))
	}
	if got[2].Text != "External power connected." {
		t.Fatalf("unexpected late utterance: %q", got[2].Text)
	}
}

func TestPauseDropsButKeepsDebounceBookkeeping(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()

	m.handleCommand(cmdPause)
	if !m.Paused() {
		t.Fatal("expected paused status")
	}
	m.handleEvent(deviceEvent(event.ClassUsb, event.ActionInserted, event.LevelUnknown, base))
	m.handleCommand(cmdResume)

	// хвост не воспроизводится: повтор внутри окна после снятия паузы гасится
	m.handleEvent(deviceEvent(event.ClassUsb, event.ActionInserted, event.LevelUnknown, base.Add(time.Second)))
	if got := speaker.spoken(); len(got) != 0 {
		t.Fatalf("expected no utterances, got %d", len(got))
	}

	m.handleEvent(deviceEvent(event.ClassUsb, event.ActionRemoved, event.LevelUnknown, base.Add(4*time.Second)))
	if got := speaker.spoken(); len(got) != 1 {
		t.Fatalf("expected one utterance after window, got %d", len(got))
	}
}

func TestResumeNoticeBypassesPause(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)
	base := time.Now()
	m.now = func() time.Time { return base }

	m.handleCommand(cmdPause)
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseEntering, At: base.Add(-time.Second)})
	m.handleEvent(event.Event{Kind: event.KindSleepTransition, Phase: event.PhaseResuming, At: base})

	// оба служебных уведомления произносятся несмотря на паузу
	got := speaker.spoken()
	if len(got) != 2 || got[0].Priority != tts.PriorityControl || got[1].Priority != tts.PriorityControl {
		t.Fatalf("expected control sleep and resume notices while paused, got %+v", got)
	}
	if got[1].Text != "All systems back online." {
		t.Fatalf("unexpected resume utterance: %q", got[1].Text)
	}
	// пауза переживает цикл сна
	if !m.Paused() {
		t.Fatal("expected paused status restored after resume")
	}
}

func TestWifiAnnouncementSubstitutesSSID(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)

	m.handleEvent(event.Event{
		Kind: event.KindNetworkChanged, At: time.Now(),
		Net: event.NetConnected, Medium: event.MediumWiFi, SSID: "HomeNet",
	})

	got := speaker.spoken()
	if len(got) != 1 || got[0].Text != "Connected to Wi-Fi network HomeNet" {
		t.Fatalf("unexpected wifi announcement: %+v", got)
	}
}

func TestMissingTemplateSkipsAnnouncement(t *testing.T) {
	speaker := &recordingSpeaker{}
	m := newTestMonitor(speaker)

	// network_connected_cellular нет в тестовой таблице
	m.handleEvent(event.Event{
		Kind: event.KindNetworkChanged, At: time.Now(),
		Net: event.NetConnected, Medium: event.MediumCellular,
	})
	m.handleEvent(event.Event{
		Kind: event.KindNetworkChanged, At: time.Now().Add(time.Second),
		Net: event.NetConnected, Medium: event.MediumEthernet,
	})

	got := speaker.spoken()
	if len(got) != 1 || got[0].Text != "Wired network connected." {
		t.Fatalf("expected cellular skipped and ethernet spoken, got %+v", got)
	}
}

func TestRunConsumesBusAndCommands(t *testing.T) {
	speaker := &recordingSpeaker{}
	bus := event.NewBus(16)
	cfg := Config{Locale: "en", DebounceWindow: 2 * time.Second, ResumeGrace: 5 * time.Second}
	m := New(cfg, bus, speaker, testPhrases(), zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(done)
	}()

	bus.Publish(event.NewStartupGreeting("sir"))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(speaker.spoken()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := speaker.spoken()
	if len(got) != 1 || got[0].Text != "Welcome, sir. All systems online." {
		t.Fatalf("unexpected greeting: %+v", got)
	}

	m.Pause()
	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !m.Paused() {
		time.Sleep(5 * time.Millisecond)
	}
	if !m.Paused() {
		t.Fatal("expected paused after command")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop on context cancel")
	}
}
