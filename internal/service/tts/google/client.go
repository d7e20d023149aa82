package google

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/config"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts/player"
)

// Client реализует синтез и перечисление голосов через Google Cloud
// Text-to-Speech; результат синтеза воспроизводится плеером.
type Client struct {
	cfg    config.GoogleTTSConfig
	player player.Player
	logger *zap.SugaredLogger
}

var _ tts.Synthesizer = (*Client)(nil)
var _ tts.VoiceLister = (*Client)(nil)

func New(cfg config.GoogleTTSConfig, p player.Player, logger *zap.SugaredLogger) *Client {
	return &Client{cfg: cfg, player: p, logger: logger}
}

// Synthesize выполняет запрос к Google TTS и воспроизводит аудио до конца
// фразы либо до отмены контекста.
func (c *Client) Synthesize(ctx context.Context, text string, voice tts.VoiceProfile) error {
	ttsClient, err := gctts.NewClient(ctx)
	if err != nil {
		return err
	}
	defer ttsClient.Close()

	input := &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}}

	sel := &ttspb.VoiceSelectionParams{
		LanguageCode: voice.Locale,
		Name:         voice.Name,
	}

	// Только MP3
	audio := &ttspb.AudioConfig{
		AudioEncoding: ttspb.AudioEncoding_MP3,
		SpeakingRate:  c.cfg.SpeakingRate,
		Pitch:         c.cfg.Pitch,
		VolumeGainDb:  c.cfg.VolumeGainDb,
	}
	if ep := strings.TrimSpace(c.cfg.EffectsProfileID); ep != "" {
		audio.EffectsProfileId = []string{ep}
	}

	req := &ttspb.SynthesizeSpeechRequest{Input: input, Voice: sel, AudioConfig: audio}
	started := time.Now()
	resp, err := ttsClient.SynthesizeSpeech(ctx, req)
	if err != nil {
		return err
	}
	c.logger.Infow("Google TTS synthesize completed", "took", time.Since(started).String())

	// Проигрываем MP3
	r := io.NopCloser(bytes.NewReader(resp.GetAudioContent()))
	return c.player.Play(ctx, "mp3", r)
}

// Voices перечисляет доступные голоса движка. Локаль голоса — первый
// языковой код из ответа API.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	ttsClient, err := gctts.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	defer ttsClient.Close()

	resp, err := ttsClient.ListVoices(ctx, &ttspb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}

	voices := make([]tts.Voice, 0, len(resp.GetVoices()))
	for _, v := range resp.GetVoices() {
		locale := ""
		if codes := v.GetLanguageCodes(); len(codes) > 0 {
			locale = codes[0]
		}
		voices = append(voices, tts.Voice{Name: v.GetName(), Locale: locale})
	}
	return voices, nil
}
