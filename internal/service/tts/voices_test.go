package tts

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

type fakeLister struct {
	voices []Voice
	calls  atomic.Int32
	// ошибки энумерации для первых вызовов; исчерпав список, отвечает voices
	errs []error
}

func (f *fakeLister) Voices(_ context.Context) ([]Voice, error) {
	n := f.calls.Add(1)
	if int(n) <= len(f.errs) {
		return nil, f.errs[n-1]
	}
	return f.voices, nil
}

func installed() []Voice {
	return []Voice{
		{Name: "en-US-Standard-C", Locale: "en-US"},
		{Name: "fr-FR-Standard-A", Locale: "fr-FR"},
		{Name: "Zira", Locale: "en-US"},
		{Name: "ru-RU-Standard-A", Locale: "ru-RU"},
	}
}

func TestResolveCustomVoiceWinsOverLocale(t *testing.T) {
	lister := &fakeLister{voices: installed()}
	r := NewVoiceResolver(lister, "Zira", "fr-FR", zap.NewNop().Sugar())

	p, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Zira" || p.Fallback {
		t.Fatalf("expected exact custom voice Zira, got %+v", p)
	}
}

func TestResolveLocaleMatchOverEnglishFallback(t *testing.T) {
	lister := &fakeLister{voices: installed()}
	r := NewVoiceResolver(lister, "", "fr-FR", zap.NewNop().Sugar())

	p, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "fr-FR-Standard-A" || p.Fallback {
		t.Fatalf("expected fr-FR voice, got %+v", p)
	}
}

func TestResolveEnglishFallback(t *testing.T) {
	lister := &fakeLister{voices: installed()}
	r := NewVoiceResolver(lister, "", "ja-JP", zap.NewNop().Sugar())

	p, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "en-US-Standard-C" || !p.Fallback {
		t.Fatalf("expected english fallback, got %+v", p)
	}
}

func TestResolveNoVoices(t *testing.T) {
	lister := &fakeLister{}
	r := NewVoiceResolver(lister, "", "en", zap.NewNop().Sugar())

	if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrNoVoice) {
		t.Fatalf("expected ErrNoVoice, got %v", err)
	}
	// отрицательный результат тоже кэшируется до явного Invalidate
	if _, err := r.Resolve(context.Background()); !errors.Is(err, ErrNoVoice) {
		t.Fatalf("expected cached ErrNoVoice, got %v", err)
	}
	if got := lister.calls.Load(); got != 1 {
		t.Fatalf("expected single enumeration, got %d", got)
	}
}

func TestResolveRetriesAfterTransientEnumerationError(t *testing.T) {
	lister := &fakeLister{
		voices: installed(),
		errs:   []error{errors.New("cloud hiccup")},
	}
	r := NewVoiceResolver(lister, "Zira", "en", zap.NewNop().Sugar())

	if _, err := r.Resolve(context.Background()); err == nil || errors.Is(err, ErrNoVoice) {
		t.Fatalf("expected transient enumeration error, got %v", err)
	}

	// транзиентный сбой не залипает в кэше: следующий Resolve пробует снова
	p, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("expected recovery on retry, got %v", err)
	}
	if p.Name != "Zira" {
		t.Fatalf("unexpected voice after retry: %+v", p)
	}
	if got := lister.calls.Load(); got != 2 {
		t.Fatalf("expected exactly two enumerations, got %d", got)
	}
}

func TestResolveCachesUntilInvalidate(t *testing.T) {
	lister := &fakeLister{voices: installed()}
	r := NewVoiceResolver(lister, "Zira", "en", zap.NewNop().Sugar())

	first, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical cached profile, got %+v and %+v", first, second)
	}
	if got := lister.calls.Load(); got != 1 {
		t.Fatalf("expected single enumeration, got %d", got)
	}

	r.Invalidate("", "ru-RU")
	p, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "ru-RU-Standard-A" {
		t.Fatalf("expected re-resolution after invalidate, got %+v", p)
	}
	if got := lister.calls.Load(); got != 2 {
		t.Fatalf("expected second enumeration after invalidate, got %d", got)
	}
}
