package embedding

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
)

// NewEmbedder builds the configured provider. Every provider except
// disabled is wrapped in the memo cache.
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (core.Embedder, error) {
	var provider core.Embedder

	switch cfg.Provider {
	case config.EmbeddingHash:
		provider = NewHash(cfg.Dimensions)
	case config.EmbeddingOllama:
		provider = NewOllama(cfg.BaseURL, cfg.Model, cfg.RequestDimensions, cfg.MaxTokens, nil)
	case config.EmbeddingOpenAI:
		provider = NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.RequestDimensions, cfg.MaxTokens, nil)
	case config.EmbeddingDisabled:
		log.FromCtx(ctx).Warn().Msg("embeddings disabled, retrieval falls back to effectiveness order")
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	log.FromCtx(ctx).Debug().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Int("cache_size", cfg.CacheSize).
		Msg("embedding provider configured")

	return NewCached(provider, cfg.CacheSize)
}
