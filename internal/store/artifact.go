// Package store persists analysis artifacts: the durable, append-only record
// of searches, discoveries, and market reports generated for users.  A
// Postgres backend provides durability; when it is absent or failing, writes
// fall back to an in-process ephemeral ring so the request still succeeds.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// Kind classifies an artifact.
type Kind string

const (
	KindSearch       Kind = "search"
	KindDiscovery    Kind = "discovery"
	KindMarketReport Kind = "market_report"
	KindDashboard    Kind = "dashboard"
	KindComparison   Kind = "comparison"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	switch k {
	case KindSearch, KindDiscovery, KindMarketReport, KindDashboard, KindComparison:
		return true
	}
	return false
}

// AnalysisArtifact is one append-only analysis record.  Inputs and outputs
// are opaque JSON blobs; the store never interprets them.
type AnalysisArtifact struct {
	ID         string          `json:"artifact_id"`
	Kind       Kind            `json:"kind"`
	Subject    string          `json:"subject,omitempty"`
	SessionID  string          `json:"session_id,omitempty"`
	Inputs     json.RawMessage `json:"inputs"`
	Outputs    json.RawMessage `json:"outputs"`
	Confidence *float64        `json:"confidence,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`

	// Ephemeral marks artifacts that were never durably persisted and are
	// retrievable only within the current process lifetime.
	Ephemeral bool `json:"ephemeral,omitempty"`
}

// ListFilter narrows a listing.  Zero-valued fields apply no filter.
type ListFilter struct {
	Kind      Kind
	Subject   string
	SessionID string
	Limit     int
}

// Repository is the persistence contract for artifacts.
type Repository interface {
	// Insert persists the artifact.  The store assigns ID and CreatedAt when
	// unset.
	Insert(ctx context.Context, artifact *AnalysisArtifact) error
	// List returns artifacts matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*AnalysisArtifact, error)
	// Get fetches one artifact by id.
	Get(ctx context.Context, id string) (*AnalysisArtifact, error)
}
