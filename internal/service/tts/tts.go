package tts

import (
	"context"
	"errors"
)

// ErrNoVoice — в системе нет ни одного подходящего голоса. Синтез отключается,
// состояние сообщается один раз; приложение продолжает работать.
var ErrNoVoice = errors.New("tts: no voice available")

// Priority приоритет озвучиваемой фразы.
type Priority int

const (
	// PriorityNormal — обычное объявление; может быть вытеснено из очереди
	// более новым или подавлено паузой/сном.
	PriorityNormal Priority = iota
	// PriorityControl — служебное объявление движка (напр. «системы в строю»
	// после выхода из сна); не вытесняется и игнорирует паузу.
	PriorityControl
)

// Utterance — готовая к озвучке фраза.
type Utterance struct {
	Text     string
	Priority Priority
}

// Voice — установленный/доступный голос движка синтеза.
type Voice struct {
	Name   string
	Locale string
}

// VoiceProfile — выбранный голос. Fallback выставлен, если голос подобран
// не по конфигурации/локали, а как запасной.
type VoiceProfile struct {
	Name     string
	Locale   string
	Fallback bool
}

// Synthesizer абстракция движка синтеза. Метод озвучивает текст выбранным
// голосом и блокируется до конца воспроизведения или отмены контекста.
// Движок не реентерабелен: вызывать Synthesize может только один владелец.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice VoiceProfile) error
}

// VoiceLister перечисляет доступные голоса. Запрос только на чтение;
// используется резолвером голоса и утилитой list-voices.
type VoiceLister interface {
	Voices(ctx context.Context) ([]Voice, error)
}
