package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskmem/pkg/log"
)

const (
	EmbeddingHash     = "hash"
	EmbeddingOllama   = "ollama"
	EmbeddingOpenAI   = "openai"
	EmbeddingDisabled = "disabled"
)

type EmbeddingConfig struct {
	Provider   string `env:"TUSKMEM_EMBEDDING_PROVIDER" envDefault:"hash"`
	Model      string `env:"TUSKMEM_EMBEDDING_MODEL" envDefault:"nomic-embed-text"`
	BaseURL    string `env:"TUSKMEM_EMBEDDING_URL"`
	APIKey     string `env:"TUSKMEM_EMBEDDING_API_KEY" envSecret:"true"`
	// Vector size of the hash provider. HTTP providers learn it from the
	// first response.
	Dimensions int    `env:"TUSKMEM_EMBEDDING_DIMENSIONS" envDefault:"256"`

	// Output size asked of HTTP providers that support shortening. Zero
	// leaves the field out of the request.
	RequestDimensions int `env:"TUSKMEM_EMBEDDING_REQUEST_DIMENSIONS"`

	// Number of distinct texts kept in the memo cache.
	CacheSize int `env:"TUSKMEM_EMBEDDING_CACHE_SIZE" envDefault:"2048"`
	// Inputs longer than this are truncated before reaching an HTTP provider.
	MaxTokens int `env:"TUSKMEM_EMBEDDING_MAX_TOKENS" envDefault:"512"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c, err := LoadEmbeddingConfig(env.Options{})
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}

func LoadEmbeddingConfig(opts env.Options) (*EmbeddingConfig, error) {
	c := &EmbeddingConfig{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, err
	}

	switch c.Provider {
	case EmbeddingHash, EmbeddingDisabled:
	case EmbeddingOllama:
		if c.BaseURL == "" {
			c.BaseURL = "http://localhost:11434"
		}
	case EmbeddingOpenAI:
		if c.BaseURL == "" {
			c.BaseURL = "https://api.openai.com"
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", c.Provider)
	}
	return c, nil
}
