// Package postgres provides the pgx-backed task store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/config"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/storage/postgres/migrations"
)

type Store struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// Connect opens a pool, pings it and, when cfg.Migrate is set, applies the
// embedded goose migrations.
func Connect(ctx context.Context, logger zerolog.Logger, cfg config.PostgresConfig) (*Store, error) {
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	err = pgPool.Ping(pingCtx)
	if err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")

	s := &Store{logger: logger, pgPool: pgPool}
	if cfg.Migrate {
		err = s.migrate(ctx)
		if err != nil {
			pgPool.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pgPool)
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger: s.logger})
	err := goose.SetDialect("postgres")
	if err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	err = goose.UpContext(ctx, db, ".")
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	s.logger.Info().Msg("applied postgres migrations")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pgPool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pgPool.Close()
	s.logger.Info().Msg("disconnected from postgres")
	return nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

type gooseLogger struct {
	logger zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info().Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Fatal().Msgf(format, v...)
}
