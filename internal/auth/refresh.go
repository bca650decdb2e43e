// Package auth implements the refresh-token lifecycle.  A token is valid iff
// its jti is present in the cache; rotation deletes the old jti and inserts a
// new one atomically from the caller's perspective, so a rotated or revoked
// token can never authenticate again.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/redis"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// Token is an issued refresh token together with its companion access token.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresIn is the access-token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// Manager drives the refresh-token state machine: issued, active, then one of
// rotated, revoked, or expired.
type Manager struct {
	cache *redis.Cache
	cfg   config.AuthConfig
	log   logging.Logger
}

// NewManager creates a Manager backed by the shared cache.
func NewManager(cache *redis.Cache, cfg config.AuthConfig, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Manager{cache: cache, cfg: cfg, log: log.Named("auth")}
}

// Issue creates a fresh token pair for the subject.  The refresh jti is
// stored under refresh:{jti} with the configured TTL; the access token is an
// opaque handle signed and validated at the edge.
func (m *Manager) Issue(ctx context.Context, subject string) (*Token, error) {
	if subject == "" {
		return nil, apperrors.InvalidParam("subject must not be empty")
	}
	jti := uuid.NewString()
	key := fmt.Sprintf(redis.KeyRefresh, jti)
	if err := m.cache.Set(ctx, key, subject, m.cfg.RefreshTokenTTL); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to store refresh token")
	}
	return &Token{
		AccessToken:  uuid.NewString(),
		RefreshToken: jti,
		ExpiresIn:    int64(m.cfg.AccessTokenTTL / time.Second),
	}, nil
}

// Validate resolves a refresh jti to its subject.  Unknown, rotated, revoked,
// and expired tokens are indistinguishable: the jti is simply absent.
func (m *Manager) Validate(ctx context.Context, jti string) (string, error) {
	if jti == "" {
		return "", apperrors.New(apperrors.ErrCodeRefreshTokenInvalid, "invalid refresh token")
	}
	raw, hit, err := m.cache.Get(ctx, fmt.Sprintf(redis.KeyRefresh, jti))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to read refresh token")
	}
	if !hit {
		return "", apperrors.New(apperrors.ErrCodeRefreshTokenInvalid, "invalid refresh token")
	}
	return string(raw), nil
}

// Rotate exchanges an active refresh token for a new pair.  The old jti is
// deleted before the new one is issued, so replaying the old token fails.
func (m *Manager) Rotate(ctx context.Context, jti string) (*Token, error) {
	subject, err := m.Validate(ctx, jti)
	if err != nil {
		return nil, err
	}
	if err := m.cache.Delete(ctx, fmt.Sprintf(redis.KeyRefresh, jti)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to rotate refresh token")
	}
	token, err := m.Issue(ctx, subject)
	if err != nil {
		return nil, err
	}
	m.log.Debug("refresh token rotated", logging.String("subject", subject))
	return token, nil
}

// Revoke deletes an active refresh token (logout).  Revoking an absent token
// is a no-op.
func (m *Manager) Revoke(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	if err := m.cache.Delete(ctx, fmt.Sprintf(redis.KeyRefresh, jti)); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to revoke refresh token")
	}
	return nil
}
