package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
)

// Service is the memory store. Mutating methods take mu once and then call
// unexported *Locked helpers; the helpers never lock. Reads go straight to
// the repository.
type Service struct {
	repo     core.MemoryRepository
	embedder core.Embedder
	cfg      *config.StoreConfig
	scorer   core.Scorer
	now      func() time.Time

	mu sync.Mutex
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithScorer overrides the scorer selected by StoreConfig.Scoring.
func WithScorer(scorer core.Scorer) Option {
	return func(s *Service) {
		s.scorer = scorer
	}
}

func NewService(repo core.MemoryRepository, embedder core.Embedder, cfg *config.StoreConfig, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultStoreConfig()
	}

	s := &Service{
		repo:     repo,
		embedder: embedder,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.scorer == nil {
		scorer, err := NewScorer(cfg)
		if err != nil {
			return nil, err
		}
		s.scorer = scorer
	}
	return s, nil
}

func (s *Service) Scorer() core.Scorer {
	return s.scorer
}

// embed returns nil when no vector can be produced. Callers take the
// fallback path on nil.
func (s *Service) embed(ctx context.Context, text string) []float32 {
	if s.embedder == nil || strings.TrimSpace(text) == "" {
		return nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger := log.FromCtx(ctx)
		if errors.Is(err, core.ErrEmbeddingUnavailable) {
			logger.Debug().Msg("embedding unavailable, using fallback")
		} else {
			logger.Warn().Err(err).Msg("embedding failed, using fallback")
		}
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}

func (s *Service) nowUTC() time.Time {
	return s.now().UTC()
}
