package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskmem/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"TUSKMEM_RUNTIME_PATH" envDefault:".tuskmem"`
	DBName      string `env:"TUSKMEM_DB_NAME" envDefault:"tuskmem.db"`

	// Background consolidate + prune. Zero disables the worker.
	MaintenanceInterval time.Duration `env:"TUSKMEM_MAINTENANCE_INTERVAL" envDefault:"0s"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig(env.Options{})
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func LoadAppConfig(opts env.Options) (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c, nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	if filepath.IsAbs(c.DBName) {
		return c.DBName
	}
	return filepath.Join(c.RuntimePath, c.DBName)
}
