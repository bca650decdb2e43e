// Package ratelimit implements the sliding-window admission limiter.  The
// window is a Redis sorted set of request timestamps, and the evict-count-
// insert sequence runs as a single Lua script so that admission is
// linearizable per identity: two concurrent requests can never both consume
// the last slot.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/google/uuid"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/redis"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/prometheus"
)

// Tier is a subscription level with its own request budget.
type Tier string

const (
	TierBasic        Tier = "basic"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// slidingWindowScript evicts expired timestamps, counts the rest, and admits
// by inserting the new timestamp, atomically.  KEYS[1] is the window key;
// ARGV are now (ms), window (ms), limit, and a unique member id.
// Returns {allowed, count-after}.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  return {0, count}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1}
`

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	Reset     time.Time
	// RetryAfter is populated on denial.
	RetryAfter time.Duration
	// FailedOpen marks admissions granted because the backend was
	// unreachable.
	FailedOpen bool
}

// Limiter checks admissions against per-tier sliding windows.
type Limiter struct {
	client  *redis.Client
	script  *goredis.Script
	cfg     config.RateLimitConfig
	log     logging.Logger
	metrics *prommetrics.Metrics

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Limiter.  client may be nil or disconnected; every admission
// then fails open with a warning.
func New(client *redis.Client, cfg config.RateLimitConfig, log logging.Logger, metrics *prommetrics.Metrics) *Limiter {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Limiter{
		client:  client,
		script:  goredis.NewScript(slidingWindowScript),
		cfg:     cfg,
		log:     log.Named("ratelimit"),
		metrics: metrics,
		now:     time.Now,
	}
}

// LimitFor returns the per-window budget for a tier.  Enterprise has no
// budget and returns -1.
func (l *Limiter) LimitFor(tier Tier) int64 {
	switch tier {
	case TierProfessional:
		return l.cfg.ProfessionalLimit
	case TierEnterprise:
		return -1
	default:
		return l.cfg.BasicLimit
	}
}

// Allow runs one admission check for (identity, tier).
func (l *Limiter) Allow(ctx context.Context, tier Tier, identity string) Decision {
	if !l.cfg.Enabled {
		return Decision{Allowed: true, Limit: -1, Remaining: -1}
	}

	limit := l.LimitFor(tier)
	if limit < 0 { // enterprise short-circuit, no backend touch
		l.observe(tier, "allow")
		return Decision{Allowed: true, Limit: -1, Remaining: -1}
	}

	now := l.now()
	if l.client == nil || !l.client.Connected() {
		return l.failOpen(tier, limit, now, nil)
	}

	key := fmt.Sprintf(redis.KeyRateLimit, tier, identity)
	res, err := l.script.Run(ctx, l.client.Raw(), []string{key},
		now.UnixMilli(),
		l.cfg.Window.Milliseconds(),
		limit,
		fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	).Int64Slice()
	if err != nil || len(res) != 2 {
		return l.failOpen(tier, limit, now, err)
	}

	allowed := res[0] == 1
	count := res[1]
	d := Decision{
		Allowed: allowed,
		Limit:   limit,
		Reset:   now.Add(l.cfg.Window),
	}
	if allowed {
		d.Remaining = limit - count
		l.observe(tier, "allow")
	} else {
		d.Remaining = 0
		d.RetryAfter = l.cfg.Window
		l.observe(tier, "deny")
	}
	return d
}

// failOpen grants admission when the backend cannot be consulted.
// Availability is preferred over throttling in degraded mode.
func (l *Limiter) failOpen(tier Tier, limit int64, now time.Time, err error) Decision {
	l.log.Warn("rate limit backend unavailable, failing open",
		logging.String("tier", string(tier)),
		logging.Err(err))
	l.observe(tier, "fail_open")
	return Decision{
		Allowed:    true,
		Limit:      limit,
		Remaining:  limit,
		Reset:      now.Add(l.cfg.Window),
		FailedOpen: true,
	}
}

func (l *Limiter) observe(tier Tier, decision string) {
	if l.metrics != nil {
		l.metrics.RateLimitDecisions.WithLabelValues(string(tier), decision).Inc()
	}
}
