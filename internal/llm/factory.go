package llm

import (
	"context"
	"fmt"

	"github.com/dgallion1/compgen/internal/config"
)

// New builds the Streamer selected by cfg.Provider.
func New(ctx context.Context, cfg config.Config) (Streamer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.Temperature), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
