package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/pkg/similarity"
)

// Prune deletes memories that have been used at least MinUses times and
// whose effectiveness is below MinEffectiveness, together with every edge
// touching them. Memories with fewer uses are always kept.
func (s *Service) Prune(ctx context.Context, req PruneRequest) (PruneResult, error) {
	th := pruneThresholds{minEffect: s.cfg.PruneMinEffect, minUses: s.cfg.PruneMinUses, dryRun: req.DryRun}
	if req.MinEffectiveness != nil {
		th.minEffect = *req.MinEffectiveness
	}
	if req.MinUses != nil {
		th.minUses = *req.MinUses
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pruneLocked(ctx, th)
}

type pruneThresholds struct {
	minEffect float64
	minUses   int
	dryRun    bool
}

func (s *Service) pruneLocked(ctx context.Context, th pruneThresholds) (PruneResult, error) {
	plan := func(r core.MemoryReader) (PruneResult, error) {
		all, err := r.ListMemories(ctx, core.MemoryFilter{})
		if err != nil {
			return PruneResult{}, err
		}

		res := PruneResult{PrunedNames: []string{}, DryRun: th.dryRun}
		victims := make(map[string]bool)
		for _, m := range all {
			if m.TotalUses() >= th.minUses && m.Effectiveness() < th.minEffect {
				victims[m.Name] = true
				res.PrunedNames = append(res.PrunedNames, m.Name)
			}
		}
		sort.Strings(res.PrunedNames)
		res.Pruned = len(res.PrunedNames)
		res.Remaining = len(all) - res.Pruned

		if res.Pruned > 0 {
			edges, err := r.ListEdges(ctx, 0)
			if err != nil {
				return PruneResult{}, err
			}
			for _, e := range edges {
				if victims[e.From] || victims[e.To] {
					res.EdgesRemoved++
				}
			}
		}
		return res, nil
	}

	if th.dryRun {
		res, err := plan(s.repo)
		if err != nil {
			return PruneResult{}, fmt.Errorf("failed to plan prune: %w", err)
		}
		return res, nil
	}

	var result PruneResult
	err := s.repo.InTx(ctx, func(w core.MemoryWriter) error {
		res, err := plan(w)
		if err != nil {
			return err
		}
		if res.Pruned == 0 {
			result = res
			return nil
		}

		if res.EdgesRemoved, err = w.DeleteEdgesTouching(ctx, res.PrunedNames); err != nil {
			return err
		}
		if _, err := w.DeleteMemories(ctx, res.PrunedNames); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return PruneResult{}, fmt.Errorf("failed to prune memories: %w", err)
	}

	if result.Pruned > 0 {
		log.FromCtx(ctx).Info().
			Int("pruned", result.Pruned).
			Int("remaining", result.Remaining).
			Int("edges_removed", result.EdgesRemoved).
			Msg("pruned ineffective memories")
	}
	return result, nil
}

// Decay lists memories that have not been active for more than unusedDays,
// oldest first. It does not modify anything.
func (s *Service) Decay(ctx context.Context, unusedDays int) ([]DecayedMemory, error) {
	if unusedDays <= 0 {
		unusedDays = s.cfg.DecayUnusedDays
	}

	all, err := s.repo.ListMemories(ctx, core.MemoryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}

	now := s.nowUTC()
	cutoff := now.Add(-time.Duration(unusedDays) * 24 * time.Hour)

	out := []DecayedMemory{}
	for _, m := range all {
		last := m.LastActive()
		if !last.Before(cutoff) {
			continue
		}
		out = append(out, DecayedMemory{
			Name:          m.Name,
			Kind:          m.Kind,
			Effectiveness: m.Effectiveness(),
			TotalUses:     m.TotalUses(),
			LastActive:    last,
			DaysUnused:    int(now.Sub(last).Hours() / 24),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastActive.Equal(out[j].LastActive) {
			return out[i].LastActive.Before(out[j].LastActive)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Consolidate re-runs the dedup check across the whole store. Within each
// kind, oldest first, a memory absorbs every later memory whose cosine
// similarity to it reaches the threshold: counters are added to the
// survivor, edges are moved over and the absorbed rows are deleted.
func (s *Service) Consolidate(ctx context.Context, req ConsolidateRequest) (ConsolidateResult, error) {
	if req.Threshold <= 0 {
		req.Threshold = s.cfg.DedupThreshold
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.consolidateLocked(ctx, req)
}

type consolidationPlan struct {
	kept     core.Memory
	absorbed []core.Memory
}

func planConsolidation(ctx context.Context, r core.MemoryReader, threshold float64) ([]consolidationPlan, error) {
	var plans []consolidationPlan
	for _, kind := range core.Kinds() {
		mems, err := r.ListMemories(ctx, core.MemoryFilter{Kind: &kind, WithEmbedding: true})
		if err != nil {
			return nil, err
		}
		sort.SliceStable(mems, func(i, j int) bool {
			if !mems[i].CreatedAt.Equal(mems[j].CreatedAt) {
				return mems[i].CreatedAt.Before(mems[j].CreatedAt)
			}
			return mems[i].ID < mems[j].ID
		})

		absorbed := make([]bool, len(mems))
		for i := range mems {
			if absorbed[i] {
				continue
			}
			plan := consolidationPlan{kept: mems[i]}
			for j := i + 1; j < len(mems); j++ {
				if absorbed[j] {
					continue
				}
				if similarity.Cosine(mems[i].Embedding, mems[j].Embedding) >= threshold {
					absorbed[j] = true
					plan.absorbed = append(plan.absorbed, mems[j])
				}
			}
			if len(plan.absorbed) > 0 {
				plans = append(plans, plan)
			}
		}
	}
	return plans, nil
}

func (s *Service) consolidateLocked(ctx context.Context, req ConsolidateRequest) (ConsolidateResult, error) {
	summarize := func(plans []consolidationPlan) ConsolidateResult {
		res := ConsolidateResult{Groups: []ConsolidationGroup{}, DryRun: req.DryRun}
		for _, p := range plans {
			group := ConsolidationGroup{Kind: p.kept.Kind, Kept: p.kept.Name}
			for _, a := range p.absorbed {
				group.Absorbed = append(group.Absorbed, a.Name)
			}
			res.Absorbed += len(group.Absorbed)
			res.Groups = append(res.Groups, group)
		}
		return res
	}

	if req.DryRun {
		plans, err := planConsolidation(ctx, s.repo, req.Threshold)
		if err != nil {
			return ConsolidateResult{}, fmt.Errorf("failed to plan consolidation: %w", err)
		}
		return summarize(plans), nil
	}

	var result ConsolidateResult
	err := s.repo.InTx(ctx, func(w core.MemoryWriter) error {
		plans, err := planConsolidation(ctx, w, req.Threshold)
		if err != nil {
			return err
		}
		result = summarize(plans)

		for _, p := range plans {
			for _, a := range p.absorbed {
				moved, err := absorb(ctx, w, p.kept.Name, a)
				if err != nil {
					return err
				}
				result.EdgesMoved += moved
			}
		}
		return nil
	})
	if err != nil {
		return ConsolidateResult{}, fmt.Errorf("failed to consolidate memories: %w", err)
	}

	if result.Absorbed > 0 {
		log.FromCtx(ctx).Info().
			Int("groups", len(result.Groups)).
			Int("absorbed", result.Absorbed).
			Int("edges_moved", result.EdgesMoved).
			Msg("consolidated duplicate memories")
	}
	return result, nil
}

// absorb folds a into keep and deletes it. Edges of a are re-pointed to
// keep; self loops are dropped and on a key clash the heavier weight wins.
func absorb(ctx context.Context, w core.MemoryWriter, keep string, a core.Memory) (int, error) {
	if err := w.AddCounters(ctx, keep, a.Helped, a.Failed, a.LastUsed, a.Cost); err != nil {
		return 0, err
	}

	edges, err := w.ListEdgesTouching(ctx, a.Name)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, e := range edges {
		if e.From == a.Name {
			e.From = keep
		}
		if e.To == a.Name {
			e.To = keep
		}
		if e.From == e.To {
			continue
		}

		added, err := w.InsertEdge(ctx, e)
		if err != nil {
			return 0, err
		}
		if !added {
			existing, _, err := w.GetEdge(ctx, e.From, e.To, e.RelType)
			if err != nil {
				return 0, err
			}
			if e.Weight > existing.Weight {
				if err := w.SetEdgeWeight(ctx, e.From, e.To, e.RelType, e.Weight); err != nil {
					return 0, err
				}
			}
		}
		moved++
	}

	if _, err := w.DeleteEdgesTouching(ctx, []string{a.Name}); err != nil {
		return 0, err
	}
	if _, err := w.DeleteMemories(ctx, []string{a.Name}); err != nil {
		return 0, err
	}
	return moved, nil
}
