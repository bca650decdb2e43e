package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/trovesx/OncoPurpose/internal/ratelimit"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// skipPaths are exempt from rate limiting: probes and operational surfaces.
var skipPaths = map[string]struct{}{
	"/health":  {},
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
	"/docs":    {},
}

// RateLimitMiddleware enforces the per-tier sliding window and decorates
// every limited response with the standard X-RateLimit headers.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
}

// NewRateLimit creates a RateLimitMiddleware.
func NewRateLimit(limiter *ratelimit.Limiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Handler checks the caller's budget before passing the request on.
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		if _, skip := skipPaths[r.URL.Path]; skip {
			next.ServeHTTP(w, r)
			return
		}

		tier := ContextGetTier(r.Context())
		decision := m.limiter.Allow(r.Context(), tier, ClientIdentity(r))

		if decision.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))
		}

		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    apperrors.ErrCodeTooManyRequests.String(),
				"message": "rate limit exceeded",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
