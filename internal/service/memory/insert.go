package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/pkg/similarity"
)

// Store validates req and inserts a new memory, unless a memory of the same
// kind is already similar enough, in which case it reports that one as
// merged. Without an embedding no dedup check is made.
func (s *Service) Store(ctx context.Context, req StoreRequest) (StoreResult, error) {
	kind, ok := core.ParseKind(req.Kind)
	if !ok {
		return rejected(fmt.Sprintf("unknown kind %q, expected one of %s", req.Kind, kindList())), nil
	}

	trigger := strings.TrimSpace(req.Trigger)
	if utf8.RuneCountInString(trigger) < s.cfg.MinTriggerLength {
		return rejected(fmt.Sprintf("trigger must be at least %d characters", s.cfg.MinTriggerLength)), nil
	}

	resolution := strings.TrimSpace(req.Resolution)
	if resolution == "" {
		return rejected("resolution must not be empty"), nil
	}

	if req.Cost < 0 || math.IsNaN(req.Cost) || math.IsInf(req.Cost, 0) {
		return rejected("cost must be a non-negative number"), nil
	}

	// Embedding may block on a model call; keep it outside the lock.
	vec := s.embed(ctx, trigger+" "+resolution)

	m := core.Memory{
		Kind:       kind,
		Trigger:    trigger,
		Resolution: resolution,
		Embedding:  vec,
		Source:     strings.TrimSpace(req.Source),
		Cost:       req.Cost,
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = Slugify(trigger)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storeLocked(ctx, m, name)
}

func (s *Service) storeLocked(ctx context.Context, m core.Memory, base string) (StoreResult, error) {
	logger := log.FromCtx(ctx)

	var result StoreResult
	err := s.repo.InTx(ctx, func(w core.MemoryWriter) error {
		if m.HasEmbedding() {
			dup, sim, found, err := findDuplicate(ctx, w, m.Kind, m.Embedding, s.cfg.DedupThreshold, "")
			if err != nil {
				return err
			}
			if found {
				result = StoreResult{Status: StatusMerged, Name: dup.Name, Similarity: sim}
				return nil
			}
		}

		now := s.nowUTC()
		name, err := s.assignName(ctx, w, base, now)
		if err != nil {
			return err
		}

		m.Name = name
		m.CreatedAt = now
		err = w.InsertMemory(ctx, &m)
		if errors.Is(err, core.ErrNameTaken) {
			// lost a race for the name: one retry with a finer suffix
			m.Name = name + collisionSuffix(s.nowUTC())
			logger.Debug().Str("name", name).Str("retry", m.Name).Msg("memory name collision")
			err = w.InsertMemory(ctx, &m)
		}
		if err != nil {
			return err
		}

		result = StoreResult{Status: StatusAdded, Name: m.Name}
		return nil
	})
	if err != nil {
		return StoreResult{}, fmt.Errorf("failed to store memory: %w", err)
	}

	logger.Debug().
		Str("status", string(result.Status)).
		Str("name", result.Name).
		Str("kind", m.Kind.String()).
		Bool("embedded", m.HasEmbedding()).
		Msg("memory stored")
	return result, nil
}

// findDuplicate returns the most similar memory of kind whose cosine
// similarity to vec is at least threshold. exclude skips one name.
func findDuplicate(ctx context.Context, r core.MemoryReader, kind core.Kind, vec []float32, threshold float64, exclude string) (core.Memory, float64, bool, error) {
	candidates, err := r.ListMemories(ctx, core.MemoryFilter{Kind: &kind, WithEmbedding: true})
	if err != nil {
		return core.Memory{}, 0, false, err
	}

	var (
		best    core.Memory
		bestSim float64
		found   bool
	)
	for _, c := range candidates {
		if c.Name == exclude {
			continue
		}
		sim := similarity.Cosine(vec, c.Embedding)
		if sim >= threshold && (!found || sim > bestSim) {
			best, bestSim, found = c, sim, true
		}
	}
	return best, bestSim, found, nil
}

func rejected(reason string) StoreResult {
	return StoreResult{Status: StatusRejected, Reason: reason}
}

func kindList() string {
	kinds := core.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, ", ")
}
