package config

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskmem/pkg/log"
)

// StoreConfig holds the tunables of the memory service.
type StoreConfig struct {
	DedupThreshold   float64 `env:"TUSKMEM_DEDUP_THRESHOLD" envDefault:"0.85"`
	MinTriggerLength int     `env:"TUSKMEM_MIN_TRIGGER_LENGTH" envDefault:"10"`
	DefaultLimit     int     `env:"TUSKMEM_DEFAULT_LIMIT" envDefault:"5"`

	EdgeWeightFloor float64 `env:"TUSKMEM_EDGE_WEIGHT_FLOOR" envDefault:"0.5"`
	MaxEdgeWeight   float64 `env:"TUSKMEM_MAX_EDGE_WEIGHT" envDefault:"10"`

	Scoring         string  `env:"TUSKMEM_SCORING" envDefault:"blend"`
	BlendRelevance  float64 `env:"TUSKMEM_BLEND_RELEVANCE" envDefault:"0.5"`
	BlendEffective  float64 `env:"TUSKMEM_BLEND_EFFECTIVENESS" envDefault:"0.3"`
	BlendRecency    float64 `env:"TUSKMEM_BLEND_RECENCY" envDefault:"0.2"`
	RecencyHalfLife float64 `env:"TUSKMEM_RECENCY_HALF_LIFE_DAYS" envDefault:"14"`
	CostRelevance   float64 `env:"TUSKMEM_COST_RELEVANCE" envDefault:"0.6"`
	CostWeight      float64 `env:"TUSKMEM_COST_WEIGHT" envDefault:"0.4"`
	PruneMinEffect  float64 `env:"TUSKMEM_PRUNE_MIN_EFFECTIVENESS" envDefault:"0.25"`
	PruneMinUses    int     `env:"TUSKMEM_PRUNE_MIN_USES" envDefault:"3"`
	DecayUnusedDays int     `env:"TUSKMEM_DECAY_UNUSED_DAYS" envDefault:"90"`
}

// DefaultStoreConfig returns the envDefault values without reading the
// environment.
func DefaultStoreConfig() *StoreConfig {
	c, err := LoadStoreConfig(env.Options{Environment: map[string]string{}})
	if err != nil {
		panic(err)
	}
	return c
}

func NewStoreConfig(ctx context.Context) *StoreConfig {
	c, err := LoadStoreConfig(env.Options{})
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Store config")
	}
	return c
}

func LoadStoreConfig(opts env.Options) (*StoreConfig, error) {
	c := &StoreConfig{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *StoreConfig) Validate() error {
	switch {
	case c.DedupThreshold <= 0 || c.DedupThreshold > 1:
		return fmt.Errorf("dedup threshold must be in (0, 1], got %v", c.DedupThreshold)
	case c.MinTriggerLength < 1:
		return fmt.Errorf("min trigger length must be positive, got %d", c.MinTriggerLength)
	case c.DefaultLimit < 1:
		return fmt.Errorf("default limit must be positive, got %d", c.DefaultLimit)
	case c.EdgeWeightFloor < 0:
		return fmt.Errorf("edge weight floor must not be negative, got %v", c.EdgeWeightFloor)
	case c.MaxEdgeWeight <= 0:
		return fmt.Errorf("max edge weight must be positive, got %v", c.MaxEdgeWeight)
	case c.RecencyHalfLife <= 0:
		return fmt.Errorf("recency half-life must be positive, got %v", c.RecencyHalfLife)
	}
	return nil
}
