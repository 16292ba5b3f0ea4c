package memory

import (
	"context"
	"time"

	"github.com/sandevgo/tuskmem/pkg/log"
)

// MaintenanceWorker periodically consolidates and then prunes the store.
type MaintenanceWorker struct {
	svc      *Service
	interval time.Duration
}

func NewMaintenanceWorker(svc *Service, interval time.Duration) *MaintenanceWorker {
	return &MaintenanceWorker{
		svc:      svc,
		interval: interval,
	}
}

func (w *MaintenanceWorker) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("component", "maintenance_worker").Logger()
	if w.interval <= 0 {
		logger.Debug().Msg("maintenance worker disabled")
		return nil
	}
	logger.Info().Dur("interval", w.interval).Msg("starting maintenance worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down maintenance worker")
			return nil
		case <-ticker.C:
			if err := w.RunOnce(logger.WithContext(ctx)); err != nil {
				logger.Error().Err(err).Msg("maintenance pass failed")
			}
		}
	}
}

func (w *MaintenanceWorker) Shutdown(ctx context.Context) error {
	return nil
}

// RunOnce performs a single consolidate + prune pass.
func (w *MaintenanceWorker) RunOnce(ctx context.Context) error {
	consolidated, err := w.svc.Consolidate(ctx, ConsolidateRequest{})
	if err != nil {
		return err
	}
	pruned, err := w.svc.Prune(ctx, PruneRequest{})
	if err != nil {
		return err
	}

	log.FromCtx(ctx).Debug().
		Int("absorbed", consolidated.Absorbed).
		Int("pruned", pruned.Pruned).
		Int("remaining", pruned.Remaining).
		Msg("maintenance pass complete")
	return nil
}
