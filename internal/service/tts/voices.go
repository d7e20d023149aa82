package tts

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// VoiceResolver подбирает голос по политике и кэширует результат.
// Порядок подбора, первый совпавший выигрывает:
//  1. точное имя из конфигурации, если такой голос установлен;
//  2. голос с локалью приложения;
//  3. запасной английский голос;
//  4. голосов нет вовсе — ErrNoVoice, синтез отключается.
//
// Повторный Resolve с неизменной конфигурацией возвращает кэш без повторной
// энумерации; сброс — только явным Invalidate при перезагрузке конфигурации.
type VoiceResolver struct {
	lister VoiceLister
	logger *zap.SugaredLogger

	mu          sync.Mutex
	customVoice string
	locale      string
	cached      *VoiceProfile
	cachedErr   error
	resolved    bool
}

func NewVoiceResolver(lister VoiceLister, customVoice, locale string, logger *zap.SugaredLogger) *VoiceResolver {
	return &VoiceResolver{
		lister:      lister,
		logger:      logger,
		customVoice: strings.TrimSpace(customVoice),
		locale:      strings.TrimSpace(locale),
	}
}

// Resolve возвращает кэшированный профиль или выполняет подбор.
func (r *VoiceResolver) Resolve(ctx context.Context) (VoiceProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		if r.cachedErr != nil {
			return VoiceProfile{}, r.cachedErr
		}
		return *r.cached, nil
	}

	profile, err := r.pick(ctx)
	if err != nil {
		// кэшируется только «голосов нет вовсе»; транзиентный сбой энумерации
		// не фиксируем, следующий Resolve повторит попытку
		if errors.Is(err, ErrNoVoice) {
			r.resolved = true
			r.cachedErr = err
		}
		return VoiceProfile{}, err
	}
	r.resolved = true
	r.cached = &profile
	r.logger.Infow("Voice resolved", "name", profile.Name, "locale", profile.Locale, "fallback", profile.Fallback)
	return profile, nil
}

// Invalidate сбрасывает кэш и принимает новый снимок конфигурации.
// Следующий Resolve выполнит энумерацию заново.
func (r *VoiceResolver) Invalidate(customVoice, locale string) {
	r.mu.Lock()
	r.customVoice = strings.TrimSpace(customVoice)
	r.locale = strings.TrimSpace(locale)
	r.cached = nil
	r.cachedErr = nil
	r.resolved = false
	r.mu.Unlock()
}

func (r *VoiceResolver) pick(ctx context.Context) (VoiceProfile, error) {
	voices, err := r.lister.Voices(ctx)
	if err != nil {
		return VoiceProfile{}, err
	}
	if len(voices) == 0 {
		return VoiceProfile{}, ErrNoVoice
	}

	// 1. Точное имя из конфигурации
	if r.customVoice != "" {
		for _, v := range voices {
			if v.Name == r.customVoice {
				return VoiceProfile{Name: v.Name, Locale: v.Locale}, nil
			}
		}
		r.logger.Warnw("Configured voice not installed, falling back", "voice", r.customVoice)
	}

	// 2. Совпадение по локали приложения
	if r.locale != "" {
		for _, v := range voices {
			if localeMatches(v.Locale, r.locale) {
				return VoiceProfile{Name: v.Name, Locale: v.Locale}, nil
			}
		}
	}

	// 3. Запасной английский голос
	for _, v := range voices {
		if localeMatches(v.Locale, "en") {
			return VoiceProfile{Name: v.Name, Locale: v.Locale, Fallback: true}, nil
		}
	}

	// Английского нет — берём первый доступный, это лучше тишины
	v := voices[0]
	return VoiceProfile{Name: v.Name, Locale: v.Locale, Fallback: true}, nil
}

// localeMatches сравнивает локали без учёта регистра с точностью до языка:
// "fr-FR" совпадает и с "fr-FR", и с "fr".
func localeMatches(have, want string) bool {
	have = strings.ToLower(have)
	want = strings.ToLower(want)
	if have == want {
		return true
	}
	return strings.HasPrefix(have, want+"-") || strings.HasPrefix(want, have+"-")
}
