package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edgard/facto/internal/config"
)

// New creates a Client for the configured backend.
func New(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	if log == nil {
		log = slog.Default()
	}
	log.Info("Initializing AI client", "backend", cfg.Backend, "model", cfg.Model)

	switch cfg.Backend {
	case "openai", "":
		client, err := newOpenAIClient(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	case "gemini":
		client, err := newGeminiClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown AI backend specified: %s", cfg.Backend)
	}
}
