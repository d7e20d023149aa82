// Утилита перечисляет голоса, доступные движку синтеза,
// чтобы подобрать значение CUSTOM_VOICE.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ECeternalcat/CO-MP-UT-ER/internal/config"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts/google"
	"github.com/ECeternalcat/CO-MP-UT-ER/internal/service/tts/player"
)

func main() {
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer logger.Sync()

	if !cfg.SynthesisConfigured() {
		sugar.Errorw("Speech credentials are not configured", "path", cfg.GoogleTTS.CredentialsPath)
		os.Exit(1)
	}

	client := google.New(cfg.GoogleTTS, player.New(), sugar)
	voices, err := client.Voices(context.Background())
	if err != nil {
		sugar.Errorw("Failed to list voices", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Available voices: %d\n", len(voices))
	for _, v := range voices {
		fmt.Printf("  %-40s %s\n", v.Name, v.Locale)
	}
}
