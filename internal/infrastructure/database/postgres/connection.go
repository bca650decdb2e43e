// Package postgres manages the connection pool and schema migrations for the
// analysis store.  The database is optional: an empty URL yields a nil pool
// and the store falls back to ephemeral in-process artifacts.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// Connect opens a pgx pool according to cfg and verifies it with a ping.
// An empty URL returns (nil, nil): persistence is disabled, not broken.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "invalid database url")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "database ping failed")
	}

	log.Named("postgres").Info("database connected",
		logging.String("database", poolCfg.ConnConfig.Database))
	return pool, nil
}
