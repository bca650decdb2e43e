package store

import (
	"context"
	"encoding/json"

	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/prometheus"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// EventPublisher is the messaging contract the store needs: one fire-and-
// forget event per persisted artifact.  The kafka producer satisfies it; a
// nil publisher disables events.
type EventPublisher interface {
	PublishArtifactCreated(ctx context.Context, artifact *AnalysisArtifact) error
}

// Store is the artifact facade: durable writes through the primary
// repository, with transparent fallback to the ephemeral ring when the
// primary fails or was never configured.
type Store struct {
	primary   Repository // nil when persistence is disabled
	ephemeral *EphemeralRepository
	events    EventPublisher
	log       logging.Logger
	metrics   *prommetrics.Metrics
}

// New creates a Store.  primary may be nil; events may be nil.
func New(primary Repository, events EventPublisher, log logging.Logger, metrics *prommetrics.Metrics) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{
		primary:   primary,
		ephemeral: NewEphemeralRepository(),
		events:    events,
		log:       log.Named("store"),
		metrics:   metrics,
	}
}

// Insert persists the artifact, falling back to the ephemeral ring on
// database failure.  The artifact is mutated in place with its assigned id
// and timestamp.
func (s *Store) Insert(ctx context.Context, a *AnalysisArtifact) error {
	if !a.Kind.Valid() {
		return apperrors.Validation("kind", "unknown artifact kind")
	}

	backend := "postgres"
	if s.primary == nil {
		backend = "ephemeral"
		if err := s.ephemeral.Insert(ctx, a); err != nil {
			return err
		}
	} else if err := s.primary.Insert(ctx, a); err != nil {
		s.log.Warn("artifact persistence degraded to ephemeral",
			logging.String("kind", string(a.Kind)),
			logging.Err(err))
		backend = "ephemeral"
		if err := s.ephemeral.Insert(ctx, a); err != nil {
			return err
		}
	}

	if s.metrics != nil {
		s.metrics.ArtifactsPersisted.WithLabelValues(backend).Inc()
	}
	s.publish(ctx, a)
	return nil
}

// List returns artifacts matching the filter, newest first.  Durable and
// ephemeral artifacts are both visible; durable ones come first since the
// ephemeral ring only holds degraded writes.
func (s *Store) List(ctx context.Context, f ListFilter) ([]*AnalysisArtifact, error) {
	var out []*AnalysisArtifact
	if s.primary != nil {
		durable, err := s.primary.List(ctx, f)
		if err != nil {
			s.log.Warn("artifact listing degraded to ephemeral", logging.Err(err))
		} else {
			out = durable
		}
	}

	remaining := 0
	if f.Limit > 0 {
		remaining = f.Limit - len(out)
		if remaining <= 0 {
			return out, nil
		}
	}
	eph, _ := s.ephemeral.List(ctx, ListFilter{
		Kind: f.Kind, Subject: f.Subject, SessionID: f.SessionID, Limit: remaining,
	})
	return append(out, eph...), nil
}

// Get fetches one artifact by id from whichever backend holds it.
func (s *Store) Get(ctx context.Context, id string) (*AnalysisArtifact, error) {
	if a, err := s.ephemeral.Get(ctx, id); err == nil {
		return a, nil
	}
	if s.primary == nil {
		return nil, apperrors.New(apperrors.ErrCodeArtifactNotFound, "analysis artifact not found").
			WithDetail("artifact_id=" + id)
	}
	return s.primary.Get(ctx, id)
}

// publish emits the artifact-created event.  Failures are logged and
// swallowed; eventing is best-effort.
func (s *Store) publish(ctx context.Context, a *AnalysisArtifact) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishArtifactCreated(ctx, a); err != nil {
		s.log.Warn("failed to publish artifact event",
			logging.String("artifact_id", a.ID),
			logging.Err(err))
	}
}

// MarshalInputs is a convenience for callers assembling artifacts.
func MarshalInputs(v interface{}) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return raw
}
