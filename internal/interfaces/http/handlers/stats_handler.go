package handlers

import (
	"net/http"

	"github.com/trovesx/OncoPurpose/internal/corpus"
)

// StatsHandler reports corpus composition statistics.
type StatsHandler struct {
	idx *corpus.Index
}

// NewStats creates a StatsHandler.
func NewStats(idx *corpus.Index) *StatsHandler {
	return &StatsHandler{idx: idx}
}

// Get handles GET /api/v1/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.idx.Stats())
}
