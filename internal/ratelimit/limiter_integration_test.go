//go:build integration

// Integration tests running the sliding-window script against a real Redis.
// Requires Docker and runs behind the "integration" build tag.
package ratelimit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/redis"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	"github.com/trovesx/OncoPurpose/internal/ratelimit"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, rdb.Ping(ctx).Err())
	t.Cleanup(func() { _ = rdb.Close() })

	return redis.NewFromRedis(rdb, logging.NewNopLogger())
}

func TestLimiter_SlidingWindowAgainstRealRedis(t *testing.T) {
	client := startRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:           true,
		Window:            2 * time.Second,
		BasicLimit:        3,
		ProfessionalLimit: 1000,
	}
	limiter := ratelimit.New(client, cfg, logging.NewNopLogger(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d := limiter.Allow(ctx, ratelimit.TierBasic, "192.0.2.1")
		require.True(t, d.Allowed, "request %d should pass", i)
		assert.False(t, d.FailedOpen)
	}

	denied := limiter.Allow(ctx, ratelimit.TierBasic, "192.0.2.1")
	assert.False(t, denied.Allowed)
	assert.Equal(t, int64(0), denied.Remaining)

	// the window slides: after it elapses the budget is restored
	time.Sleep(2100 * time.Millisecond)
	again := limiter.Allow(ctx, ratelimit.TierBasic, "192.0.2.1")
	assert.True(t, again.Allowed)
}

func TestLimiter_ConcurrentIdentitiesIsolated(t *testing.T) {
	client := startRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:    true,
		Window:     time.Minute,
		BasicLimit: 2,
	}
	limiter := ratelimit.New(client, cfg, logging.NewNopLogger(), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.True(t, limiter.Allow(ctx, ratelimit.TierBasic, "a").Allowed)
	}
	assert.False(t, limiter.Allow(ctx, ratelimit.TierBasic, "a").Allowed)
	assert.True(t, limiter.Allow(ctx, ratelimit.TierBasic, "b").Allowed)
}
