// Package middleware holds the HTTP middleware chain: request identity,
// structured access logging, CORS, and rate limiting.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/trovesx/OncoPurpose/internal/ratelimit"
)

type contextKey string

const (
	subjectKey contextKey = "subject"
	tierKey    contextKey = "tier"
)

// Subject and tier arrive as headers from the authenticating edge proxy.
const (
	HeaderSubject = "X-API-Subject"
	HeaderTier    = "X-API-Tier"
)

// IdentityMiddleware resolves the caller's subject and subscription tier and
// stores them on the request context.  Absent headers resolve to an anonymous
// basic-tier caller.
type IdentityMiddleware struct{}

// NewIdentity creates an IdentityMiddleware.
func NewIdentity() *IdentityMiddleware {
	return &IdentityMiddleware{}
}

// Handler attaches subject and tier to the request context.
func (m *IdentityMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if subject := strings.TrimSpace(r.Header.Get(HeaderSubject)); subject != "" {
			ctx = context.WithValue(ctx, subjectKey, subject)
		}
		ctx = context.WithValue(ctx, tierKey, parseTier(r.Header.Get(HeaderTier)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseTier(raw string) ratelimit.Tier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ratelimit.TierProfessional):
		return ratelimit.TierProfessional
	case string(ratelimit.TierEnterprise):
		return ratelimit.TierEnterprise
	default:
		return ratelimit.TierBasic
	}
}

// ContextGetSubject returns the authenticated subject, or "" for anonymous
// callers.
func ContextGetSubject(ctx context.Context) string {
	if v, ok := ctx.Value(subjectKey).(string); ok {
		return v
	}
	return ""
}

// ContextGetTier returns the caller's tier, defaulting to basic.
func ContextGetTier(ctx context.Context) ratelimit.Tier {
	if v, ok := ctx.Value(tierKey).(ratelimit.Tier); ok {
		return v
	}
	return ratelimit.TierBasic
}

// ClientIdentity returns the stable identity used for rate limiting: the
// subject when authenticated, otherwise the first client address found in
// the forwarding headers or the remote address.
func ClientIdentity(r *http.Request) string {
	if subject := ContextGetSubject(r.Context()); subject != "" {
		return subject
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
