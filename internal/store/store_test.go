package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// failingRepo simulates an unreachable database.
type failingRepo struct{}

func (failingRepo) Insert(context.Context, *AnalysisArtifact) error {
	return errors.New("connection refused")
}
func (failingRepo) List(context.Context, ListFilter) ([]*AnalysisArtifact, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) Get(context.Context, string) (*AnalysisArtifact, error) {
	return nil, errors.New("connection refused")
}

type capturedEvents struct {
	artifacts []*AnalysisArtifact
}

func (c *capturedEvents) PublishArtifactCreated(_ context.Context, a *AnalysisArtifact) error {
	c.artifacts = append(c.artifacts, a)
	return nil
}

func searchArtifact(session string) *AnalysisArtifact {
	conf := 0.75
	return &AnalysisArtifact{
		Kind:       KindSearch,
		SessionID:  session,
		Inputs:     json.RawMessage(`{"q":"metformin"}`),
		Outputs:    json.RawMessage(`{"total":3}`),
		Confidence: &conf,
	}
}

func TestInsert_EphemeralWhenNoPrimary(t *testing.T) {
	events := &capturedEvents{}
	s := New(nil, events, logging.NewNopLogger(), nil)
	ctx := context.Background()

	a := searchArtifact("sess-1")
	require.NoError(t, s.Insert(ctx, a))

	assert.True(t, strings.HasPrefix(a.ID, "eph_"))
	assert.True(t, a.Ephemeral)
	assert.False(t, a.CreatedAt.IsZero())
	require.Len(t, events.artifacts, 1)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestInsert_FallsBackOnPrimaryFailure(t *testing.T) {
	s := New(failingRepo{}, nil, logging.NewNopLogger(), nil)
	ctx := context.Background()

	a := searchArtifact("sess-1")
	require.NoError(t, s.Insert(ctx, a))
	assert.True(t, a.Ephemeral)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestInsert_RejectsUnknownKind(t *testing.T) {
	s := New(nil, nil, logging.NewNopLogger(), nil)
	err := s.Insert(context.Background(), &AnalysisArtifact{Kind: "bogus"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestList_FiltersAndOrder(t *testing.T) {
	s := New(nil, nil, logging.NewNopLogger(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Insert(ctx, searchArtifact("sess-1")))
	}
	dash := &AnalysisArtifact{Kind: KindDashboard, SessionID: "sess-2"}
	require.NoError(t, s.Insert(ctx, dash))

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	// Newest first.
	assert.Equal(t, dash.ID, all[0].ID)

	searches, err := s.List(ctx, ListFilter{Kind: KindSearch})
	require.NoError(t, err)
	assert.Len(t, searches, 3)

	limited, err := s.List(ctx, ListFilter{Kind: KindSearch, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	bySession, err := s.List(ctx, ListFilter{SessionID: "sess-2"})
	require.NoError(t, err)
	assert.Len(t, bySession, 1)
}

func TestGet_NotFound(t *testing.T) {
	s := New(nil, nil, logging.NewNopLogger(), nil)
	_, err := s.Get(context.Background(), "eph_missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEphemeral_RingEviction(t *testing.T) {
	r := NewEphemeralRepository()
	ctx := context.Background()

	var first *AnalysisArtifact
	for i := 0; i < ephemeralCapacity+10; i++ {
		a := &AnalysisArtifact{Kind: KindSearch, SessionID: fmt.Sprintf("s-%d", i)}
		require.NoError(t, r.Insert(ctx, a))
		if i == 0 {
			first = a
		}
	}

	assert.Equal(t, ephemeralCapacity, r.Len())
	_, err := r.Get(ctx, first.ID)
	assert.Error(t, err, "oldest artifact should have been evicted")
}
