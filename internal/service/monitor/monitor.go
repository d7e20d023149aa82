package monitor

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/phrase"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts"
)

// State состояние машины подавления.
type State int

const (
	StateActive State = iota
	StatePaused
	StateSleepTransitioning
)

// Speaker — конвейер синтеза с точки зрения монитора.
type Speaker interface {
	Speak(u tts.Utterance)
	Flush()
}

// PhraseResolver — резолвер шаблонов подсказок.
type PhraseResolver interface {
	Resolve(locale, key string, params map[string]string) (string, error)
}

// Config параметры монитора.
type Config struct {
	Locale string
	// Окно подавления повторных событий одного класса устройств
	DebounceWindow time.Duration
	// Тишина для обычных событий сразу после выхода из сна
	ResumeGrace time.Duration
}

type command int

const (
	cmdPause command = iota + 1
	cmdResume
	cmdToggle
)

// Monitor — единственный потребитель шины событий. Владеет машиной состояний
// {Active, Paused, SleepTransitioning}, дебаунсом по классам устройств и
// превращает принятые события в фразы для конвейера синтеза.
// Вся логика выполняется в одной горутине Run; внешние команды приходят
// через канал, поэтому внутренних блокировок нет.
type Monitor struct {
	cfg     Config
	bus     *event.Bus
	speaker Speaker
	phrases PhraseResolver
	logger  *zap.SugaredLogger

	now func() time.Time // подменяется в тестах

	state             State
	pausedBeforeSleep bool
	lastResumeAt      time.Time
	lastSeen          map[event.DeviceClass]time.Time
	reportedKeys      map[string]struct{}

	cmds   chan command
	paused atomic.Bool
}

func New(cfg Config, bus *event.Bus, speaker Speaker, phrases PhraseResolver, logger *zap.SugaredLogger) *Monitor {
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = 2 * time.Second
	}
	if cfg.ResumeGrace <= 0 {
		cfg.ResumeGrace = 5 * time.Second
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	return &Monitor{
		cfg:          cfg,
		bus:          bus,
		speaker:      speaker,
		phrases:      phrases,
		logger:       logger,
		now:          time.Now,
		state:        StateActive,
		lastSeen:     map[event.DeviceClass]time.Time{},
		reportedKeys: map[string]struct{}{},
		cmds:         make(chan command, 8),
	}
}

// Pause подавляет обычные объявления до Resume.
func (m *Monitor) Pause() { m.send(cmdPause) }

// Resume снимает паузу.
func (m *Monitor) Resume() { m.send(cmdResume) }

// Toggle переключает паузу; используется меню в трее.
func (m *Monitor) Toggle() { m.send(cmdToggle) }

// Paused текущий статус для отображения в трее.
func (m *Monitor) Paused() bool { return m.paused.Load() }

func (m *Monitor) send(c command) {
	select {
	case m.cmds <- c:
	default:
		m.logger.Warnw("Monitor command queue full, dropping command")
	}
}

// Run — основной цикл; блокируется до отмены контекста.
func (m *Monitor) Run(ctx context.Context) error {
	// подберём события, опубликованные до старта цикла
	m.drain()
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-m.bus.NotifyCh():
			m.drain()
		case c := <-m.cmds:
			m.handleCommand(c)
		}
	}
}

func (m *Monitor) drain() {
	for _, ev := range m.bus.Drain() {
		m.handleEvent(ev)
	}
}

func (m *Monitor) handleCommand(c command) {
	wantPaused := false
	switch c {
	case cmdPause:
		wantPaused = true
	case cmdResume:
		wantPaused = false
	case cmdToggle:
		if m.state == StateSleepTransitioning {
			wantPaused = !m.pausedBeforeSleep
		} else {
			wantPaused = m.state != StatePaused
		}
	}

	if m.state == StateSleepTransitioning {
		// применим после пробуждения
		m.pausedBeforeSleep = wantPaused
	} else if wantPaused {
		m.state = StatePaused
	} else {
		m.state = StateActive
	}
	m.paused.Store(wantPaused)
	m.logger.Infow("Announcements toggled", "paused", wantPaused)
}

func (m *Monitor) handleEvent(ev event.Event) {
	if ev.Kind == event.KindSleepTransition {
		m.handleSleep(ev)
		return
	}

	switch m.state {
	case StateSleepTransitioning:
		// окно сна: молча выбрасываем всё обычное
		return
	case StatePaused:
		// пауза: событие не озвучивается, но учёт дебаунса ведём,
		// чтобы после Resume не воспроизводился накопленный хвост
		if cl, ok := deviceClass(ev); ok {
			m.lastSeen[cl] = ev.At
		}
		return
	}

	// тишина сразу после пробуждения: шторм ре-энумерации не озвучиваем
	if !m.lastResumeAt.IsZero() && ev.At.Sub(m.lastResumeAt) < m.cfg.ResumeGrace {
		if cl, ok := deviceClass(ev); ok {
			m.lastSeen[cl] = ev.At
		}
		m.logger.Debugw("Event suppressed by post-resume grace", "kind", ev.Kind)
		return
	}

	if cl, ok := deviceClass(ev); ok {
		if last, seen := m.lastSeen[cl]; seen && ev.At.Sub(last) < m.cfg.DebounceWindow {
			m.logger.Debugw("Duplicate device event dropped by debounce", "class", cl)
			return
		}
		m.lastSeen[cl] = ev.At
	}

	m.announce(ev)
}

func (m *Monitor) handleSleep(ev event.Event) {
	switch ev.Phase {
	case event.PhaseEntering:
		if m.state == StateSleepTransitioning {
			return
		}
		m.pausedBeforeSleep = m.state == StatePaused
		m.state = StateSleepTransitioning
		// служебное объявление об уходе в сон; Flush его не вытеснит
		if text, err := m.resolve("system_going_to_sleep", nil); err == nil {
			m.speaker.Speak(tts.Utterance{Text: text, Priority: tts.PriorityControl})
		}
		// досыпная речь не должна прозвучать после пробуждения
		m.speaker.Flush()
		m.logger.Infow("System entering sleep, announcements suppressed")
	case event.PhaseResuming:
		// ОС может прислать и RESUMEAUTOMATIC, и RESUMESUSPEND — дубль без
		// нового засыпания глушим; после настоящего Entering выход из
		// SleepTransitioning обязателен, иначе монитор застрянет в нём
		if m.state != StateSleepTransitioning &&
			!m.lastResumeAt.IsZero() && ev.At.Sub(m.lastResumeAt) < m.cfg.ResumeGrace {
			return
		}
		m.lastResumeAt = m.now()
		if m.pausedBeforeSleep {
			m.state = StatePaused
		} else {
			m.state = StateActive
		}
		m.logger.Infow("System resumed from sleep")
		// служебное объявление: произносится даже на паузе и не вытесняется
		if text, err := m.resolve("system_resumed_from_sleep", nil); err == nil {
			m.speaker.Speak(tts.Utterance{Text: text, Priority: tts.PriorityControl})
		}
	}
}

func (m *Monitor) announce(ev event.Event) {
	key, params, ok := keyAndParams(ev)
	if !ok {
		m.logger.Warnw("No announcement mapping for event, dropping", "kind", ev.Kind)
		return
	}
	text, err := m.resolve(key, params)
	if err != nil {
		return
	}
	m.speaker.Speak(tts.Utterance{Text: text, Priority: tts.PriorityNormal})
}

// resolve возвращает текст подсказки; отсутствующий шаблон — ошибка
// конфигурации, о которой сообщаем один раз на ключ, объявление пропускается.
func (m *Monitor) resolve(key string, params map[string]string) (string, error) {
	text, err := m.phrases.Resolve(m.cfg.Locale, key, params)
	if err != nil {
		if errors.Is(err, phrase.ErrTemplateMissing) {
			if _, reported := m.reportedKeys[key]; !reported {
				m.reportedKeys[key] = struct{}{}
				m.logger.Errorw("Template missing, skipping announcement", "key", key, "locale", m.cfg.Locale)
			}
		} else {
			m.logger.Errorw("Template resolution failed", "key", key, "error", err)
		}
		return "", err
	}
	return text, nil
}

// deviceClass возвращает класс устройства для событий, подпадающих под дебаунс.
func deviceClass(ev event.Event) (event.DeviceClass, bool) {
	switch ev.Kind {
	case event.KindDeviceChanged, event.KindBatteryLevel:
		return ev.Class, true
	}
	return 0, false
}

// keyAndParams отображает событие на ключ шаблона и параметры подстановки.
func keyAndParams(ev event.Event) (string, map[string]string, bool) {
	switch ev.Kind {
	case event.KindStartupGreeting:
		return "system_online", map[string]string{"user": ev.UserName}, true
	case event.KindPowerChanged:
		if ev.Source == event.SourceAC {
			return "external_power_connected", nil, true
		}
		return "switched_to_battery", nil, true
	case event.KindBatteryLevel:
		return "battery_level_report", levelParams(ev.Level), true
	case event.KindDeviceChanged:
		switch ev.Class {
		case event.ClassUsb:
			if ev.Action == event.ActionInserted {
				return "usb_device_detected", nil, true
			}
			return "usb_device_disconnected", nil, true
		case event.ClassBattery:
			if ev.Action == event.ActionRemoved {
				return "battery_removed", nil, true
			}
			if ev.Level == event.LevelUnknown {
				return "battery_inserted_unknown", nil, true
			}
			return "battery_inserted", levelParams(ev.Level), true
		}
	case event.KindNetworkChanged:
		if ev.Net == event.NetDisconnected {
			return "network_disconnected", nil, true
		}
		switch ev.Medium {
		case event.MediumWiFi:
			return "network_connected_wifi", map[string]string{"ssid": ev.SSID}, true
		case event.MediumEthernet:
			return "network_connected_ethernet", nil, true
		case event.MediumCellular:
			return "network_connected_cellular", nil, true
		default:
			return "network_connected_unknown", map[string]string{"ssid": ev.SSID}, true
		}
	}
	return "", nil, false
}

func levelParams(level int) map[string]string {
	return map[string]string{"level": strconv.Itoa(phrase.ClampLevel(level))}
}
