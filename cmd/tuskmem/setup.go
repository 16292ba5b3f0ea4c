package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskmem/internal/config"
	"github.com/sandevgo/tuskmem/internal/core"
	"github.com/sandevgo/tuskmem/internal/providers/embedding"
	"github.com/sandevgo/tuskmem/internal/service/memory"
	"github.com/sandevgo/tuskmem/internal/storage/sqlite"
	"github.com/sandevgo/tuskmem/pkg/log"
	"github.com/sandevgo/tuskmem/pkg/srv"
	"github.com/spf13/cobra"
)

// app holds everything a command needs. Close releases it in reverse order.
type app struct {
	appCfg   *config.AppConfig
	storeCfg *config.StoreConfig
	embCfg   *config.EmbeddingConfig

	db       *sql.DB
	embedder core.Embedder
	svc      *memory.Service
}

func newApp(ctx context.Context) (*app, error) {
	if err := initEnv(ctx, config.GetEnvFilePath()); err != nil {
		return nil, err
	}

	a := &app{
		appCfg:   config.NewAppConfig(ctx),
		storeCfg: config.NewStoreConfig(ctx),
		embCfg:   config.NewEmbeddingConfig(ctx),
	}

	db, err := sqlite.NewDB(ctx, a.appCfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}
	a.db = db

	a.embedder, err = embedding.NewEmbedder(ctx, a.embCfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	repo := sqlite.NewMemoryRepo(db, a.appCfg.GetDatabasePath())
	a.svc, err = memory.NewService(repo, a.embedder, a.storeCfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// cleanups lists the resources to release, in acquisition order.
func (a *app) cleanups() []srv.Service {
	services := []srv.Service{srv.NewCleanup(a.db.Close)}
	if c, ok := a.embedder.(io.Closer); ok {
		services = append(services, srv.NewCleanup(c.Close))
	}
	return services
}

func (a *app) Close() error {
	var errs []error
	cleanups := a.cleanups()
	for i := len(cleanups) - 1; i >= 0; i-- {
		errs = append(errs, cleanups[i].Shutdown(context.Background()))
	}
	return errors.Join(errs...)
}

func initEnv(ctx context.Context, envFile string) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

// runWithApp sets up logging and the app around fn.
func runWithApp(fn func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				log.FromCtx(ctx).Error().Err(err).Msg("failed to release resources")
			}
		}()

		return fn(ctx, cmd, args, a)
	}
}
