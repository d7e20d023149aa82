package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/device"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/network"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/power"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/sleep"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/adapter/startup"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/app/autostart"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/config"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/event"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/monitor"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/phrase"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tray"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts/google"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts/noop"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts/player"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	var logger *zap.Logger
	var err error
	if cfg.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"Locale", cfg.Locale,
		"CustomVoice", cfg.CustomVoice,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Автозапуск — не критичен, при сбое просто предупреждаем
	if err := autostart.Set(cfg.AutoStart); err != nil {
		sugar.Warnw("Failed to update autostart registration", "error", err)
	}

	// Таблица шаблонов подсказок
	table, err := phrase.LoadDir(cfg.LocalesDir)
	if err != nil {
		sugar.Errorw("Failed to load locale templates", "dir", cfg.LocalesDir, "error", err)
		return
	}
	phrases := phrase.New(table, cfg.DefaultLocale)

	// Бэкенд синтеза: облачный при наличии ключа, иначе тихий no-op.
	// Приложение продолжает следить за событиями даже без озвучки.
	var synth tts.Synthesizer
	var lister tts.VoiceLister
	if cfg.SynthesisConfigured() {
		client := google.New(cfg.GoogleTTS, player.New(), sugar)
		synth, lister = client, client
	} else {
		sugar.Warnw("Speech credentials are not configured, announcements disabled")
		n := noop.New()
		synth, lister = n, n
	}

	voices := tts.NewVoiceResolver(lister, cfg.CustomVoice, cfg.Locale, sugar)
	dispatcher := tts.NewDispatcher(synth, voices, tts.DispatcherConfig{
		QueueCapacity: cfg.QueueCapacity,
		SynthTimeout:  cfg.SynthTimeout,
	}, sugar)

	bus := event.NewBus(cfg.BusCapacity)
	mon := monitor.New(monitor.Config{
		Locale:         cfg.Locale,
		DebounceWindow: cfg.DebounceWindow,
		ResumeGrace:    cfg.ResumeGrace,
	}, bus, dispatcher, phrases, sugar)

	sources := []adapter.Source{
		startup.New(bus, sugar),
		power.New(bus, sugar),
		sleep.New(bus, sugar),
		device.New(bus, cfg.BatteryPollInterval, sugar),
		network.New(bus, cfg.NetworkPollInterval, sugar),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			sugar.Errorw("Speech dispatcher stopped", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			sugar.Errorw("Event monitor stopped", "error", err)
		}
	}()

	// Каждый источник живёт в своей горутине; отказ регистрации одного
	// канала не валит остальные — деградируем по-канально.
	for _, src := range sources {
		wg.Add(1)
		go func(src adapter.Source) {
			defer wg.Done()
			err := src.Run(ctx)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case errors.Is(err, adapter.ErrRegistration):
				sugar.Warnw("Event source unavailable, channel disabled", "source", src.Name(), "error", err)
			default:
				sugar.Errorw("Event source stopped", "source", src.Name(), "error", err)
			}
		}(src)
	}

	// Трей блокирует main до выхода (по сигналу или пункту меню)
	trayService := tray.New(mon, "CO-MP-UT-ER", stop, sugar)
	if err := trayService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		sugar.Errorw("Tray stopped", "error", err)
	}

	stop()
	wg.Wait()
	sugar.Infow("App stopped")
}
