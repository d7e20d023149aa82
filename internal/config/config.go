package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool `env:"DEBUG_MODE"` // Режим дебага

	// Озвучка
	CustomVoice string `env:"CUSTOM_VOICE"` // Точное имя установленного голоса; пусто — авто-подбор по локали
	Locale      string `env:"LOCALE"`       // Локаль приложения (и подсказок), напр. en или ru

	// Автозапуск вместе с Windows (ключ реестра Run)
	AutoStart bool `env:"AUTO_START"`

	// Шаблоны подсказок
	LocalesDir    string `env:"LOCALES_DIR"`    // Папка с файлами <locale>.json
	DefaultLocale string `env:"DEFAULT_LOCALE"` // Запасная локаль, если нужной нет

	// Движок объявлений
	BusCapacity    int           `env:"BUS_CAPACITY"`     // Ёмкость общей очереди событий
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`  // Окно подавления повторов одного класса устройств
	ResumeGrace    time.Duration `env:"RESUME_GRACE"`     // Тишина после выхода из сна (шторм ре-энумерации)
	QueueCapacity  int           `env:"SPEECH_QUEUE_CAP"` // Ёмкость очереди синтеза
	SynthTimeout   time.Duration `env:"SYNTH_TIMEOUT"`    // Сторожевой таймаут одного синтеза

	// Адаптеры-опросчики
	NetworkPollInterval time.Duration `env:"NETWORK_POLL_INTERVAL"` // Период опроса активного интерфейса
	BatteryPollInterval time.Duration `env:"BATTERY_POLL_INTERVAL"` // Период опроса присутствия/заряда батареи

	// Синтез через Google Cloud Text-to-Speech
	GoogleTTS GoogleTTSConfig
}

// GoogleTTSConfig конфигурация синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Фактически читается из ENV GOOGLE_APPLICATION_CREDENTIALS.
	// Здесь храним дефолт (service-account.json в корне проекта) для удобства.
	CredentialsPath string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	SpeakingRate    float64 `env:"GOOGLE_TTS_SPEAKING_RATE"`
	Pitch           float64 `env:"GOOGLE_TTS_PITCH"`
	VolumeGainDb    float64 `env:"GOOGLE_TTS_VOLUME_DB"`
	// Эффект профиля устройства воспроизведения, напр. large-home-entertainment-class-device
	EffectsProfileID string `env:"GOOGLE_TTS_EFFECTS_PROFILE_ID"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
// Длительности DebounceWindow/ResumeGrace — продуктовые константы, поэтому
// намеренно вынесены в конфигурацию, а не зашиты в код.
func Defaults() *Config {
	return &Config{
		DebugMode:     false,
		CustomVoice:   "",
		Locale:        "en",
		AutoStart:     false,
		LocalesDir:    "locales",
		DefaultLocale: "en",

		BusCapacity:    64,
		DebounceWindow: 2 * time.Second,
		ResumeGrace:    5 * time.Second,
		QueueCapacity:  4,
		SynthTimeout:   30 * time.Second,

		NetworkPollInterval: 3 * time.Second,
		BatteryPollInterval: 5 * time.Second,

		GoogleTTS: GoogleTTSConfig{
			CredentialsPath:  "service-account.json",
			SpeakingRate:     1.0,
			Pitch:            0.0,
			VolumeGainDb:     0.0,
			EffectsProfileID: "",
		},
	}
}

// NewConfig загружает конфигурацию приложения.
func NewConfig() *Config {
	_ = godotenv.Load()

	// Стартуем с дефолтов, затем перекрываем .env/окружением и флагами
	cfg := Defaults()
	_ = env.Parse(cfg)

	flag.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага для отображения доп. инфы")
	flag.StringVar(&cfg.CustomVoice, "custom-voice", cfg.CustomVoice, "точное имя голоса; пусто — авто-подбор по локали")
	flag.StringVar(&cfg.Locale, "locale", cfg.Locale, "локаль приложения, напр. en или ru")
	flag.BoolVar(&cfg.AutoStart, "auto-start", cfg.AutoStart, "зарегистрировать автозапуск вместе с Windows")
	flag.StringVar(&cfg.LocalesDir, "locales-dir", cfg.LocalesDir, "папка с файлами шаблонов <locale>.json")
	flag.StringVar(&cfg.DefaultLocale, "default-locale", cfg.DefaultLocale, "запасная локаль шаблонов")
	flag.IntVar(&cfg.BusCapacity, "bus-capacity", cfg.BusCapacity, "ёмкость общей очереди событий")
	flag.DurationVar(&cfg.DebounceWindow, "debounce-window", cfg.DebounceWindow, "окно подавления повторов одного класса устройств, напр. 2s")
	flag.DurationVar(&cfg.ResumeGrace, "resume-grace", cfg.ResumeGrace, "тишина после выхода из сна, напр. 5s")
	flag.IntVar(&cfg.QueueCapacity, "speech-queue-cap", cfg.QueueCapacity, "ёмкость очереди синтеза")
	flag.DurationVar(&cfg.SynthTimeout, "synth-timeout", cfg.SynthTimeout, "сторожевой таймаут одного синтеза")
	flag.DurationVar(&cfg.NetworkPollInterval, "network-poll-interval", cfg.NetworkPollInterval, "период опроса активного сетевого интерфейса")
	flag.DurationVar(&cfg.BatteryPollInterval, "battery-poll-interval", cfg.BatteryPollInterval, "период опроса батареи")
	// Параметры Google TTS
	flag.StringVar(&cfg.GoogleTTS.CredentialsPath, "google-tts-credentials", cfg.GoogleTTS.CredentialsPath, "путь к service-account.json (также читается из ENV GOOGLE_APPLICATION_CREDENTIALS)")
	flag.Float64Var(&cfg.GoogleTTS.SpeakingRate, "google-tts-speaking-rate", cfg.GoogleTTS.SpeakingRate, "скорость речи (1.0 по умолчанию)")
	flag.Float64Var(&cfg.GoogleTTS.Pitch, "google-tts-pitch", cfg.GoogleTTS.Pitch, "тон (полутоны), может быть отрицательным")
	flag.Float64Var(&cfg.GoogleTTS.VolumeGainDb, "google-tts-volume-db", cfg.GoogleTTS.VolumeGainDb, "усиление громкости (дБ), допустимо от -96.0 до +16.0")
	flag.StringVar(&cfg.GoogleTTS.EffectsProfileID, "google-tts-effects-profile-id", cfg.GoogleTTS.EffectsProfileID, "EffectsProfileId, напр. large-home-entertainment-class-device")
	flag.Parse()

	// Если ENV пуст, но в конфиге указан существующий файл ключа — устанавливаем ENV.
	// Отсутствие ключа не фатально: синтез будет отключён (режим «нет голоса»),
	// само приложение продолжает мониторинг.
	if strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")) == "" {
		if cp := strings.TrimSpace(cfg.GoogleTTS.CredentialsPath); cp != "" {
			if _, err := os.Stat(cp); err == nil {
				_ = os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", cp)
			}
		}
	}

	return cfg
}

// SynthesisConfigured сообщает, доступен ли ключ для облачного синтеза.
func (c *Config) SynthesisConfigured() bool {
	return strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")) != ""
}
