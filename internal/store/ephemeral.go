package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// ephemeralCapacity bounds the in-process ring; the oldest artifact is
// evicted when a write would exceed it.
const ephemeralCapacity = 512

// ephemeralIDPrefix marks artifact ids that are only retrievable within this
// process lifetime.
const ephemeralIDPrefix = "eph_"

// EphemeralRepository is the in-memory fallback used when the database is
// absent or unavailable.  It is a fixed-size ring ordered by insertion, which
// matches created_at order because artifacts are append-only.
type EphemeralRepository struct {
	mu        sync.RWMutex
	artifacts []*AnalysisArtifact
}

// NewEphemeralRepository creates an empty ring.
func NewEphemeralRepository() *EphemeralRepository {
	return &EphemeralRepository{}
}

func (r *EphemeralRepository) Insert(_ context.Context, a *AnalysisArtifact) error {
	if a.ID == "" || !strings.HasPrefix(a.ID, ephemeralIDPrefix) {
		a.ID = ephemeralIDPrefix + uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.Ephemeral = true

	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, a)
	if len(r.artifacts) > ephemeralCapacity {
		r.artifacts = r.artifacts[len(r.artifacts)-ephemeralCapacity:]
	}
	return nil
}

func (r *EphemeralRepository) List(_ context.Context, f ListFilter) ([]*AnalysisArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*AnalysisArtifact
	for i := len(r.artifacts) - 1; i >= 0; i-- { // newest first
		a := r.artifacts[i]
		if f.Kind != "" && a.Kind != f.Kind {
			continue
		}
		if f.Subject != "" && a.Subject != f.Subject {
			continue
		}
		if f.SessionID != "" && a.SessionID != f.SessionID {
			continue
		}
		out = append(out, a)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (r *EphemeralRepository) Get(_ context.Context, id string) (*AnalysisArtifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.artifacts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrCodeArtifactNotFound, "analysis artifact not found").
		WithDetail("artifact_id=" + id)
}

// Len reports the number of retained artifacts.
func (r *EphemeralRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.artifacts)
}
