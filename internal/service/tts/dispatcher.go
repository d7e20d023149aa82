package tts

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DispatcherConfig параметры конвейера синтеза.
type DispatcherConfig struct {
	// Ёмкость очереди; небольшая, переполнение вытесняет самое старое Normal
	QueueCapacity int
	// Сторожевой таймаут одного синтеза: зависший движок ОС превращается
	// в сообщённую ошибку, а не в вечное молчание всего конвейера
	SynthTimeout time.Duration
}

// Dispatcher — однопоточный конвейер синтеза. Выделенный воркер монопольно
// владеет движком; в любой момент озвучивается не более одной фразы.
// Normal-фразы могут вытесняться новыми при переполнении очереди,
// Control-фразы не вытесняются никогда.
type Dispatcher struct {
	synth  Synthesizer
	voices *VoiceResolver
	logger *zap.SugaredLogger
	cfg    DispatcherConfig

	mu              sync.Mutex
	queue           []Utterance
	notify          chan struct{}
	cancelCurrent   context.CancelFunc
	currentPriority Priority
	speaking        bool
	noVoiceReported bool
}

func NewDispatcher(synth Synthesizer, voices *VoiceResolver, cfg DispatcherConfig, logger *zap.SugaredLogger) *Dispatcher {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 4
	}
	if cfg.SynthTimeout <= 0 {
		cfg.SynthTimeout = 30 * time.Second
	}
	return &Dispatcher{
		synth:  synth,
		voices: voices,
		logger: logger,
		cfg:    cfg,
		queue:  make([]Utterance, 0, cfg.QueueCapacity),
		notify: make(chan struct{}, 1),
	}
}

// Speak ставит фразу в очередь и немедленно возвращается.
// Политика переполнения: вытесняется самая старая Normal-фраза; если вся
// очередь занята Control-фразами, новая Normal отбрасывается, а Control
// добавляется сверх ёмкости.
func (d *Dispatcher) Speak(u Utterance) {
	if u.Text == "" {
		return
	}
	d.mu.Lock()
	if len(d.queue) >= d.cfg.QueueCapacity {
		if idx := d.oldestNormalLocked(); idx >= 0 {
			d.queue = append(d.queue[:idx], d.queue[idx+1:]...)
		} else if u.Priority == PriorityNormal {
			d.mu.Unlock()
			d.logger.Warnw("Speech queue full of control utterances, dropping normal", "text", u.Text)
			return
		}
	}
	d.queue = append(d.queue, u)
	d.mu.Unlock()
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// oldestNormalLocked индекс самой старой Normal-фразы; -1, если таких нет.
func (d *Dispatcher) oldestNormalLocked() int {
	for i, u := range d.queue {
		if u.Priority == PriorityNormal {
			return i
		}
	}
	return -1
}

// Flush убирает из очереди все Normal-фразы и жёстко прерывает Normal-фразу,
// звучащую прямо сейчас. Вызывается при уходе в сон: досыпная речь не должна
// прозвучать после пробуждения. Control-фразы не трогаются.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	kept := d.queue[:0]
	for _, u := range d.queue {
		if u.Priority == PriorityControl {
			kept = append(kept, u)
		}
	}
	d.queue = kept
	if d.speaking && d.currentPriority == PriorityNormal && d.cancelCurrent != nil {
		d.cancelCurrent()
	}
	d.mu.Unlock()
}

// Pending текущая длина очереди.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	n := len(d.queue)
	d.mu.Unlock()
	return n
}

var errGuardTimeout = errors.New("tts: synthesis guard timeout")

// Run — цикл воркера; блокируется до отмены контекста.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-d.notify:
		}
		// уведомления сворачиваются, поэтому выгребаем очередь до конца
		for {
			u, ok := d.pop()
			if !ok {
				break
			}
			d.speakOne(ctx, u)
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
		}
	}
}

func (d *Dispatcher) pop() (Utterance, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return Utterance{}, false
	}
	u := d.queue[0]
	d.queue = append(d.queue[:0], d.queue[1:]...)
	return u, true
}

func (d *Dispatcher) speakOne(ctx context.Context, u Utterance) {
	voice, err := d.voices.Resolve(ctx)
	if err != nil {
		if errors.Is(err, ErrNoVoice) {
			// сообщаем однократно, дальше молча no-op — без спама в лог
			d.mu.Lock()
			reported := d.noVoiceReported
			d.noVoiceReported = true
			d.mu.Unlock()
			if !reported {
				d.logger.Warnw("No voice available, speech disabled until config reload")
			}
			return
		}
		d.logger.Errorw("Voice resolution failed", "error", err)
		return
	}

	synthCtx, cancel := context.WithTimeoutCause(ctx, d.cfg.SynthTimeout, errGuardTimeout)
	d.mu.Lock()
	d.cancelCurrent = cancel
	d.currentPriority = u.Priority
	d.speaking = true
	d.mu.Unlock()

	err = d.synth.Synthesize(synthCtx, u.Text, voice)

	// снимок состояния контекста до cancel, иначе классификация ошибки
	// всегда увидит отменённый контекст
	interrupted := synthCtx.Err() != nil
	cause := context.Cause(synthCtx)

	d.mu.Lock()
	d.speaking = false
	d.cancelCurrent = nil
	d.mu.Unlock()
	cancel()

	switch {
	case err == nil:
	case ctx.Err() != nil:
		// завершение всего приложения, не ошибка синтеза
	case errors.Is(cause, errGuardTimeout):
		d.logger.Errorw("Synthesis timed out, dropping utterance", "text", u.Text, "timeout", d.cfg.SynthTimeout.String())
	case interrupted:
		// прерывание по Flush при уходе в сон
		d.logger.Infow("Utterance interrupted", "text", u.Text)
	default:
		d.logger.Errorw("Synthesis failed, dispatcher stays available", "error", err, "text", u.Text)
	}
}
