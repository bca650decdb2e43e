package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/redis"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
)

func testLimiter(t *testing.T, basic int64) (*Limiter, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	client := redis.NewFromRedis(rdb, logging.NewNopLogger())

	cfg := config.RateLimitConfig{
		Enabled:           true,
		Window:            time.Hour,
		BasicLimit:        basic,
		ProfessionalLimit: 1000,
	}
	l := New(client, cfg, logging.NewNopLogger(), nil)

	clock := time.Now()
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestAllow_WithinBudget(t *testing.T) {
	l, _ := testLimiter(t, 3)
	ctx := context.Background()

	for i := int64(0); i < 3; i++ {
		d := l.Allow(ctx, TierBasic, "alice")
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(3), d.Limit)
		assert.Equal(t, 3-i-1, d.Remaining)
	}
}

func TestAllow_DeniesOverBudget(t *testing.T) {
	l, _ := testLimiter(t, 2)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, TierBasic, "alice").Allowed)
	require.True(t, l.Allow(ctx, TierBasic, "alice").Allowed)

	d := l.Allow(ctx, TierBasic, "alice")
	assert.False(t, d.Allowed)
	assert.Equal(t, int64(0), d.Remaining)
	assert.Equal(t, time.Hour, d.RetryAfter)
	assert.False(t, d.Reset.IsZero())
}

func TestAllow_WindowSlides(t *testing.T) {
	l, clock := testLimiter(t, 1)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, TierBasic, "alice").Allowed)
	require.False(t, l.Allow(ctx, TierBasic, "alice").Allowed)

	*clock = clock.Add(61 * time.Minute)
	assert.True(t, l.Allow(ctx, TierBasic, "alice").Allowed)
}

func TestAllow_IdentitiesAreIsolated(t *testing.T) {
	l, _ := testLimiter(t, 1)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, TierBasic, "alice").Allowed)
	require.False(t, l.Allow(ctx, TierBasic, "alice").Allowed)
	assert.True(t, l.Allow(ctx, TierBasic, "bob").Allowed)
	assert.True(t, l.Allow(ctx, TierProfessional, "alice").Allowed)
}

func TestAllow_EnterpriseUnlimited(t *testing.T) {
	l, _ := testLimiter(t, 1)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		d := l.Allow(ctx, TierEnterprise, "megacorp")
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(-1), d.Limit)
	}
}

func TestAllow_FailOpenWithoutBackend(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:    true,
		Window:     time.Hour,
		BasicLimit: 1,
	}
	l := New(nil, cfg, logging.NewNopLogger(), nil)

	for i := 0; i < 5; i++ {
		d := l.Allow(context.Background(), TierBasic, "alice")
		assert.True(t, d.Allowed)
		assert.True(t, d.FailedOpen)
	}
}

func TestAllow_Disabled(t *testing.T) {
	l, _ := testLimiter(t, 1)
	l.cfg.Enabled = false

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(context.Background(), TierBasic, "alice").Allowed)
	}
}
