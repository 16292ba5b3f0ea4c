package srv

import (
	"context"

	"github.com/sandevgo/tuskmem/pkg/log"
)

// Service is a long-running component owned by the serve command.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices starts every service in its own goroutine. Start errors are
// logged and reported on the returned channel, which is closed once every
// Start call has returned.
func StartServices(ctx context.Context, services []Service) <-chan error {
	logger := log.FromCtx(ctx)
	errs := make(chan error, len(services))

	done := make(chan struct{}, len(services))
	for _, service := range services {
		go func(service Service) {
			defer func() { done <- struct{}{} }()
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed", service)
				errs <- err
			}
		}(service)
	}

	go func() {
		for range services {
			<-done
		}
		close(errs)
	}()
	return errs
}

// ShutdownServices waits for ctx to be cancelled and shuts services down in
// reverse start order.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()
	shutdownCtx := context.WithoutCancel(ctx)
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(shutdownCtx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
	}
}
