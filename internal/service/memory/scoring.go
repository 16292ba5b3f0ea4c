package memory

import (
	"fmt"
	"math"
	"time"

	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/core"
)

const (
	ScoringSimple = "simple"
	ScoringBlend  = "blend"
	ScoringCost   = "cost"
)

// NewScorer builds the scorer named by cfg.Scoring.
func NewScorer(cfg *config.StoreConfig) (core.Scorer, error) {
	switch cfg.Scoring {
	case ScoringSimple:
		return SimpleScorer{}, nil
	case ScoringBlend, "":
		return BlendScorer{
			Relevance:     cfg.BlendRelevance,
			Effectiveness: cfg.BlendEffective,
			Recency:       cfg.BlendRecency,
			HalfLifeDays:  cfg.RecencyHalfLife,
		}, nil
	case ScoringCost:
		return CostScorer{
			Relevance: cfg.CostRelevance,
			Cost:      cfg.CostWeight,
		}, nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q", cfg.Scoring)
	}
}

// SimpleScorer: relevance * (0.7 + 0.3 * effectiveness). Negative
// relevance counts as zero so a better track record never lowers the score.
type SimpleScorer struct{}

func (SimpleScorer) Name() string { return ScoringSimple }

func (SimpleScorer) Score(relevance float64, m core.Memory, _ time.Time) float64 {
	return math.Max(relevance, 0) * (0.7 + 0.3*m.Effectiveness())
}

// BlendScorer is a weighted sum of relevance, effectiveness and an
// exponentially decaying recency term.
type BlendScorer struct {
	Relevance     float64
	Effectiveness float64
	Recency       float64
	HalfLifeDays  float64
}

func (BlendScorer) Name() string { return ScoringBlend }

func (b BlendScorer) Score(relevance float64, m core.Memory, now time.Time) float64 {
	return b.Relevance*relevance +
		b.Effectiveness*m.Effectiveness() +
		b.Recency*Recency(m, now, b.HalfLifeDays)
}

// CostScorer prefers expensive lessons: relevance plus log2(cost + 1).
type CostScorer struct {
	Relevance float64
	Cost      float64
}

func (CostScorer) Name() string { return ScoringCost }

func (c CostScorer) Score(relevance float64, m core.Memory, _ time.Time) float64 {
	return c.Relevance*relevance + c.Cost*math.Log2(m.Cost+1)
}

// Recency is 2^(-days/halfLife) where days is measured from last_used, or
// created_at for memories that were never used. Future timestamps count as
// zero days.
func Recency(m core.Memory, now time.Time, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		return 0
	}
	days := now.Sub(m.LastActive()).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp2(-days / halfLifeDays)
}
