// Package redis wraps the go-redis client behind the cache contract the rest
// of the platform depends on.  The backend is shared by three disjoint key
// namespaces (search memoization, refresh tokens, rate-limit windows); each
// consumer gets its own thin wrapper so tests can inject per-namespace fakes.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// Client holds the live connection.  A nil Client (or one whose URL was
// empty) is valid: consumers built on it operate in disconnected pass-through
// mode.
type Client struct {
	rdb *redis.Client
	log logging.Logger
}

// Connect opens a connection according to cfg and verifies it with a ping.
// An empty URL returns (nil, nil): caching is disabled, not broken.
func Connect(ctx context.Context, cfg config.CacheConfig, log logging.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfiguration, "invalid cache url")
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "cache ping failed")
	}

	log.Named("redis").Info("cache connected", logging.String("addr", opts.Addr))
	return &Client{rdb: rdb, log: log.Named("redis")}, nil
}

// NewFromRedis wraps an existing go-redis client.  Used by tests with
// miniredis.
func NewFromRedis(rdb *redis.Client, log logging.Logger) *Client {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Client{rdb: rdb, log: log.Named("redis")}
}

// Connected reports whether a live backend is attached.
func (c *Client) Connected() bool {
	return c != nil && c.rdb != nil
}

// Raw exposes the underlying go-redis client for consumers that need script
// evaluation (the rate limiter).  Returns nil when disconnected.
func (c *Client) Raw() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// Ping checks liveness.  Disconnected clients report an error without
// touching the network.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Connected() {
		return apperrors.New(apperrors.ErrCodeCacheError, "cache not connected")
	}
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if !c.Connected() {
		return nil
	}
	return c.rdb.Close()
}
