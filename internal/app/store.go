package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/config"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/storage/postgres"
	"github.com/adanyl0v/task-manager-api/internal/storage/sqlite"
)

// OpenStore connects the backend selected by DB_DRIVER.
func OpenStore(ctx context.Context, logger zerolog.Logger, cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, logger, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, logger, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown db driver: %s", cfg.Database.Driver)
	}
}

func MustOpenStore(logger zerolog.Logger, cfg *config.Config) storage.Store {
	store, err := OpenStore(context.Background(), logger, cfg)
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", cfg.Database.Driver).
			Msg("failed to open store")
		panic(err)
	}
	return store
}

func CloseStore(logger zerolog.Logger, store storage.Store) {
	err := store.Close()
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to close store")
	}
}
