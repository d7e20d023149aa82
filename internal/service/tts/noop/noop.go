package noop

import (
	"context"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts"
)

// Client — заглушка движка синтеза для режима «нет голоса»: ключ облачного
// синтеза не настроен или голосов нет. Voices возвращает пустой список,
// поэтому резолвер голоса отключит озвучку и сообщит об этом один раз.
type Client struct{}

var _ tts.Synthesizer = (*Client)(nil)
var _ tts.VoiceLister = (*Client)(nil)

func New() *Client { return &Client{} }

func (c *Client) Synthesize(_ context.Context, _ string, _ tts.VoiceProfile) error { return nil }

func (c *Client) Voices(_ context.Context) ([]tts.Voice, error) { return nil, nil }
