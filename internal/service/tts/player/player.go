package player

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player воспроизводит аудио потоком в зависимости от формата.
// Воспроизведение блокирует до конца фразы; отмена контекста
// останавливает звук немедленно (жёсткое прерывание).
type Player interface {
	Play(ctx context.Context, format string, r io.ReadCloser) error
}

// Default реализует Player и поддерживает mp3 и wav.
type Default struct{ volumeDB float64 }

// New создаёт плеер без изменения громкости (0 dB).
func New() *Default { return &Default{volumeDB: 0} }

// NewWithVolume создаёт плеер с предустановленной громкостью в dB (отрицательные — тише).
func NewWithVolume(db float64) *Default { return &Default{volumeDB: db} }

func (d *Default) Play(ctx context.Context, format string, r io.ReadCloser) error {
	switch format {
	case "wav", "WAV":
		return play(ctx, r, d.volumeDB, decodeWAV)
	case "mp3", "MP3":
		return play(ctx, r, d.volumeDB, decodeMP3)
	default:
		return errors.New("unsupported format for direct playback; use mp3 or wav")
	}
}

type decodeFunc func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

func decodeWAV(r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(r) }
func decodeMP3(r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(r) }

func play(ctx context.Context, r io.ReadCloser, volDB float64, decode decodeFunc) error {
	streamer, format, err := decode(r)
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	vol := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   volDB,
		Silent:   false,
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() { close(done) })))
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		// обрываем звук сразу, не дожидаясь конца фразы
		speaker.Clear()
		return context.Cause(ctx)
	}
}
