package embedder

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/config"
)

// New builds an embedding client for the provider named in cfg.
func New(cfg *config.Config, log *zap.SugaredLogger) (*Client, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	return NewClient(provider, ClientOptions{
		BatchSize:     cfg.BatchSize,
		MaxConcurrent: cfg.MaxConcurrentBatches,
		Retry: RetryConfig{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
			MaxDelay:   MaxBackoffDelay,
		},
		CacheSize: cfg.CacheSize,
		Logger:    log,
	}), nil
}

func newProvider(cfg *config.Config) (Provider, error) {
	switch strings.ToLower(cfg.EmbeddingProvider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
	case ProviderOllama:
		return NewOllamaProvider(cfg.OllamaURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions), nil
	case ProviderLocal:
		return NewLocalProvider(cfg.EmbeddingDimensions), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.EmbeddingProvider)
	}
}
