package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trovesx/OncoPurpose/internal/store"
)

const defaultArtifactLimit = 50

// ArtifactHandler serves stored analysis artifacts.
type ArtifactHandler struct {
	store *store.Store
}

// NewArtifact creates an ArtifactHandler.
func NewArtifact(s *store.Store) *ArtifactHandler {
	return &ArtifactHandler{store: s}
}

// List handles GET /api/v1/artifacts.  Filterable by kind, subject, and
// session_id.
func (h *ArtifactHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultArtifactLimit)
	if err != nil {
		writeAppError(w, err)
		return
	}

	q := r.URL.Query()
	artifacts, err := h.store.List(r.Context(), store.ListFilter{
		Kind:      store.Kind(q.Get("kind")),
		Subject:   q.Get("subject"),
		SessionID: q.Get("session_id"),
		Limit:     limit,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"artifacts": artifacts,
		"count":     len(artifacts),
	})
}

// Get handles GET /api/v1/artifacts/{artifactID}.
func (h *ArtifactHandler) Get(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.store.Get(r.Context(), chi.URLParam(r, "artifactID"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}
