package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/pkg/similarity"
)

// Query ranks stored memories against text. It never mutates the store.
//
// When text cannot be embedded the result is ordered by effectiveness with
// lexical similarity attached for inspection. Candidates without an
// embedding, or with a vector of another size, are scored on lexical
// similarity instead of cosine.
func (s *Service) Query(ctx context.Context, req QueryRequest) ([]ScoredMemory, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	candidates, err := s.repo.ListMemories(ctx, core.MemoryFilter{Kind: req.Kind})
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []ScoredMemory{}, nil
	}

	queryVec := s.embed(ctx, req.Text)
	now := s.nowUTC()

	scored := make([]ScoredMemory, 0, len(candidates))
	for _, c := range candidates {
		eff := c.Effectiveness()
		if eff < req.MinEffectiveness {
			continue
		}

		var relevance, score float64
		if queryVec == nil {
			relevance = similarity.Lexical(req.Text, c.Trigger+" "+c.Resolution)
			score = eff
		} else {
			relevance = relevanceOf(req.Text, queryVec, c)
			score = s.scorer.Score(relevance, c, now)
		}

		scored = append(scored, ScoredMemory{
			Memory:        c,
			Effectiveness: eff,
			Relevance:     relevance,
			Score:         score,
		})
	}

	if queryVec == nil {
		log.FromCtx(ctx).Debug().Int("candidates", len(scored)).Msg("query without embedding, ranking by effectiveness")
		sortByEffectiveness(scored)
	} else {
		sortByScore(scored)
	}

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func relevanceOf(text string, queryVec []float32, c core.Memory) float64 {
	if len(c.Embedding) != len(queryVec) {
		return similarity.Lexical(text, c.Trigger+" "+c.Resolution)
	}
	return similarity.Cosine(queryVec, c.Embedding)
}

func sortByScore(items []ScoredMemory) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		return a.Name < b.Name
	})
}

func sortByEffectiveness(items []ScoredMemory) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Effectiveness != b.Effectiveness {
			return a.Effectiveness > b.Effectiveness
		}
		if la, lb := a.LastActive(), b.LastActive(); !la.Equal(lb) {
			return la.After(lb)
		}
		return a.Name < b.Name
	})
}
