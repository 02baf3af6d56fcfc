package llm

import (
	"context"
	"fmt"

	"github.com/genpersona/api/internal/config"
	"go.uber.org/zap"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// New builds the configured provider client wrapped in a circuit breaker.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Breaker, error) {
	var client Client

	switch cfg.LLMProvider {
	case ProviderOpenRouter, "":
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for provider %q", ProviderOpenRouter)
		}
		orCfg := DefaultOpenRouterConfig(cfg.OpenRouterAPIKey)
		orCfg.BaseURL = cfg.OpenRouterBaseURL
		orCfg.SiteURL = cfg.SiteURL
		orCfg.SiteName = cfg.SiteName
		client = NewOpenRouterClient(orCfg, logger)
	case ProviderGemini:
		gc, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			return nil, err
		}
		client = gc
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}

	breaker := NewBreakerWithConfig(client, cfg.BreakerFailures, 2, cfg.BreakerCooldown)
	breaker.OnStateChange = func(from, to CircuitState) {
		logger.Warn("generative service circuit changed state",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return breaker, nil
}
