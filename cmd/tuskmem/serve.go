package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/internal/transport/mcp"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the memory tools over MCP stdio",
	Long:  `Serves memory_* tools to an MCP client on stdin/stdout and, when TUSKMEM_MAINTENANCE_INTERVAL is set, runs consolidate and prune in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Str("version", core.TuskVersion).Msg("starting tuskmem")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}

		server := mcp.NewServer(a.svc)
		services := a.cleanups()
		services = append(services,
			memory.NewMaintenanceWorker(a.svc, a.appCfg.MaintenanceInterval),
			server,
		)

		errs := srv.StartServices(ctx, services)
		go func() {
			for range errs {
				stop()
			}
		}()
		go func() {
			// the client closing stdin ends the session
			select {
			case <-server.Done():
				stop()
			case <-ctx.Done():
			}
		}()

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("tuskmem has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
