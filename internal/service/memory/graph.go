package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
)

const DefaultEdgeWeight = 1.0

// Relate adds a directed edge. Adding an edge that already exists is a
// no-op reported as exists; the stored weight is not changed.
func (s *Service) Relate(ctx context.Context, req RelateRequest) (RelateResult, error) {
	relType, ok := core.ParseRelType(req.RelType)
	if !ok {
		return relateRejected(fmt.Sprintf("unknown rel_type %q, expected one of %s", req.RelType, relTypeList())), nil
	}

	from, to := strings.TrimSpace(req.From), strings.TrimSpace(req.To)
	if from == "" || to == "" {
		return relateRejected("from and to are required"), nil
	}
	if from == to {
		return relateRejected("a memory cannot relate to itself"), nil
	}

	weight := req.Weight
	if weight == 0 {
		weight = DefaultEdgeWeight
	}
	if math.IsNaN(weight) || weight < 0 || weight > s.cfg.MaxEdgeWeight {
		return relateRejected(fmt.Sprintf("weight must be between 0 and %g", s.cfg.MaxEdgeWeight)), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.relateLocked(ctx, core.Relationship{
		From:    from,
		To:      to,
		RelType: relType,
		Weight:  weight,
	})
}

func (s *Service) relateLocked(ctx context.Context, rel core.Relationship) (RelateResult, error) {
	var result RelateResult
	err := s.repo.InTx(ctx, func(w core.MemoryWriter) error {
		for _, name := range []string{rel.From, rel.To} {
			_, ok, err := w.GetMemory(ctx, name)
			if err != nil {
				return err
			}
			if !ok {
				result = relateRejected(fmt.Sprintf("unknown memory %q", name))
				return nil
			}
		}

		rel.CreatedAt = s.nowUTC()
		added, err := w.InsertEdge(ctx, rel)
		if err != nil {
			return err
		}
		if added {
			result = RelateResult{Status: StatusAdded, Weight: rel.Weight}
			return nil
		}

		existing, _, err := w.GetEdge(ctx, rel.From, rel.To, rel.RelType)
		if err != nil {
			return err
		}
		result = RelateResult{Status: StatusExists, Weight: existing.Weight}
		return nil
	})
	if err != nil {
		return RelateResult{}, fmt.Errorf("failed to relate memories: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Str("from", rel.From).
		Str("to", rel.To).
		Str("rel_type", rel.RelType.String()).
		Str("status", string(result.Status)).
		Msg("relate")
	return result, nil
}

// Reinforce adds delta to an existing edge, capped at MaxEdgeWeight.
func (s *Service) Reinforce(ctx context.Context, from, to, relType string, delta float64) (RelateResult, error) {
	rt, ok := core.ParseRelType(relType)
	if !ok {
		return relateRejected(fmt.Sprintf("unknown rel_type %q, expected one of %s", relType, relTypeList())), nil
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta <= 0 {
		return relateRejected("delta must be a positive number"), nil
	}
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)

	s.mu.Lock()
	defer s.mu.Unlock()

	var result RelateResult
	err := s.repo.InTx(ctx, func(w core.MemoryWriter) error {
		edge, ok, err := w.GetEdge(ctx, from, to, rt)
		if err != nil {
			return err
		}
		if !ok {
			result = relateRejected(fmt.Sprintf("no %s relationship from %q to %q", rt, from, to))
			return nil
		}

		weight := math.Min(edge.Weight+delta, s.cfg.MaxEdgeWeight)
		if err := w.SetEdgeWeight(ctx, from, to, rt, weight); err != nil {
			return err
		}
		result = RelateResult{Status: StatusUpdated, Weight: weight}
		return nil
	})
	if err != nil {
		return RelateResult{}, fmt.Errorf("failed to reinforce relationship: %w", err)
	}
	return result, nil
}

type neighbour struct {
	name    string
	relType core.RelType
	weight  float64
	dir     Direction
}

// Related walks the graph breadth first from name for up to maxHops hops.
// Edges are followed in both directions; edges lighter than the weight
// floor are never followed. Each memory is reported once, at the hop where
// it was first reached. Within a node, heavier edges are followed first and
// ties go to the neighbour name.
func (s *Service) Related(ctx context.Context, name string, maxHops int) ([]RelatedMemory, error) {
	out := []RelatedMemory{}
	name = strings.TrimSpace(name)
	if maxHops <= 0 || name == "" {
		return out, nil
	}

	_, ok, err := s.repo.GetMemory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load start memory: %w", err)
	}
	if !ok {
		return out, nil
	}

	edges, err := s.repo.ListEdges(ctx, s.cfg.EdgeWeightFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}
	adj := buildAdjacency(edges)

	visited := map[string]bool{name: true}
	frontier := []string{name}
	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		var next []string
		for _, node := range frontier {
			for _, nb := range adj[node] {
				if visited[nb.name] {
					continue
				}
				visited[nb.name] = true
				next = append(next, nb.name)

				m, found, err := s.repo.GetMemory(ctx, nb.name)
				if err != nil {
					return nil, fmt.Errorf("failed to load related memory: %w", err)
				}
				if !found {
					continue
				}
				m.Embedding = nil
				out = append(out, RelatedMemory{
					Memory:        m,
					Effectiveness: m.Effectiveness(),
					Hop:           hop,
					Via:           node,
					RelType:       nb.relType,
					Weight:        nb.weight,
					Direction:     nb.dir,
				})
			}
		}
		frontier = next
	}
	return out, nil
}

func buildAdjacency(edges []core.Relationship) map[string][]neighbour {
	adj := make(map[string][]neighbour)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], neighbour{name: e.To, relType: e.RelType, weight: e.Weight, dir: DirectionOut})
		adj[e.To] = append(adj[e.To], neighbour{name: e.From, relType: e.RelType, weight: e.Weight, dir: DirectionIn})
	}
	for node := range adj {
		list := adj[node]
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].weight != list[j].weight {
				return list[i].weight > list[j].weight
			}
			if list[i].name != list[j].name {
				return list[i].name < list[j].name
			}
			return list[i].relType < list[j].relType
		})
	}
	return adj
}

func relateRejected(reason string) RelateResult {
	return RelateResult{Status: StatusRejected, Reason: reason}
}

func relTypeList() string {
	types := core.RelTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
