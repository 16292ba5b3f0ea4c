package memory

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskmem/internal/core"
)

const lowCoveragePercent = 50.0

func (s *Service) Health(ctx context.Context) (Health, error) {
	stats, err := s.repo.KindStats(ctx)
	if err != nil {
		return Health{}, fmt.Errorf("failed to collect stats: %w", err)
	}
	edges, err := s.repo.CountEdges(ctx)
	if err != nil {
		return Health{}, fmt.Errorf("failed to count relationships: %w", err)
	}

	h := Health{
		ByKind: stats,
		Edges:  edges,
		DBPath: s.repo.Path(),
	}
	if h.ByKind == nil {
		h.ByKind = []core.KindStats{}
	}
	for _, st := range stats {
		h.Total += st.Count
		h.Helped += st.Helped
		h.Failed += st.Failed
		h.WithEmbedding += st.WithEmbedding
		h.WithFeedback += st.WithFeedback
	}

	h.Effectiveness = core.NeutralEffectiveness
	if uses := h.Helped + h.Failed; uses > 0 {
		h.Effectiveness = float64(h.Helped) / float64(uses)
	}
	if h.Total > 0 {
		h.EmbeddingCoverage = 100 * float64(h.WithEmbedding) / float64(h.Total)
	}
	h.EmbedderAvailable = s.embedder != nil && s.embedder.Available(ctx)
	return h, nil
}

// Verify reports CLOSED once memories exist and at least one of them has
// received feedback, i.e. the learning loop has run end to end.
func (s *Service) Verify(ctx context.Context) (Verification, error) {
	h, err := s.Health(ctx)
	if err != nil {
		return Verification{}, err
	}

	v := Verification{Status: VerifyOpen, Issues: []string{}, Health: h}
	if h.Total == 0 {
		v.Issues = append(v.Issues, "no memories stored yet")
	}
	if h.WithFeedback == 0 {
		v.Issues = append(v.Issues, "no feedback recorded")
	}
	if !h.EmbedderAvailable {
		v.Issues = append(v.Issues, "embedding provider unavailable")
	}
	if h.Total > 0 && h.EmbeddingCoverage < lowCoveragePercent {
		v.Issues = append(v.Issues, fmt.Sprintf("low embedding coverage (%.1f%%)", h.EmbeddingCoverage))
	}

	if h.Total > 0 && h.WithFeedback > 0 {
		v.Status = VerifyClosed
	}
	return v, nil
}
