package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/config"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/storage/postgres"
)

// OpenStore returns the configured version store and a func that releases it.
// Postgres schemas are migrated first when AutoMigrate is set.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (repository.Store, func() error, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryRepository(), func() error { return nil }, nil

	case "postgres", "":
		if cfg.AutoMigrate {
			if err := postgres.ApplyMigrations(postgres.DSN(cfg)); err != nil {
				return nil, nil, err
			}
			log.Info("database migrations applied")
		}

		db, err := postgres.NewConnection(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to postgres",
			zap.Int("max_open_conns", cfg.MaxOpenConns),
			zap.Int("max_idle_conns", cfg.MaxIdleConns),
		)
		return repository.NewProjectRepository(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
