package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/pkg/log"
)

// Feedback records the outcome of one unit of work. Every distinct injected
// name that was utilized is marked helped, every other injected name is
// marked failed. Utilized names that were never injected are ignored.
// All updates commit together or not at all.
func (s *Service) Feedback(ctx context.Context, utilized, injected []string) (FeedbackResult, error) {
	used := make(map[string]struct{}, len(utilized))
	for _, name := range utilized {
		if name = strings.TrimSpace(name); name != "" {
			used[name] = struct{}{}
		}
	}
	names := uniqueNames(injected)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.feedbackLocked(ctx, used, names)
}

func (s *Service) feedbackLocked(ctx context.Context, used map[string]struct{}, names []string) (FeedbackResult, error) {
	var result FeedbackResult
	err := s.repo.InTx(ctx, func(w core.MemoryWriter) error {
		result = FeedbackResult{NotFound: []string{}}
		now := s.nowUTC()

		for _, name := range names {
			var (
				found  bool
				err    error
				helped bool
			)
			if _, helped = used[name]; helped {
				found, err = w.MarkHelped(ctx, name, now)
			} else {
				found, err = w.MarkFailed(ctx, name)
			}
			if err != nil {
				return err
			}

			switch {
			case !found:
				result.NotFound = append(result.NotFound, name)
			case helped:
				result.Helped++
			default:
				result.NotHelped++
			}
		}
		return nil
	})
	if err != nil {
		return FeedbackResult{}, fmt.Errorf("failed to record feedback: %w", err)
	}

	log.FromCtx(ctx).Debug().
		Int("helped", result.Helped).
		Int("not_helped", result.NotHelped).
		Strs("not_found", result.NotFound).
		Msg("feedback recorded")
	return result, nil
}

// uniqueNames trims names and drops empties and repeats, keeping the first
// occurrence order.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
