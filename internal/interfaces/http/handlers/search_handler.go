package handlers

import (
	"net/http"
	"strings"

	"github.com/trovesx/OncoPurpose/internal/application/query"
	"github.com/trovesx/OncoPurpose/internal/domain/repurpose"
	"github.com/trovesx/OncoPurpose/internal/interfaces/http/middleware"
	"github.com/trovesx/OncoPurpose/internal/search"
	"github.com/trovesx/OncoPurpose/pkg/types/common"
)

// SearchHandler serves the drug-repurposing search endpoint.
type SearchHandler struct {
	orchestrator *query.Orchestrator
}

// NewSearch creates a SearchHandler.
func NewSearch(orchestrator *query.Orchestrator) *SearchHandler {
	return &SearchHandler{orchestrator: orchestrator}
}

// Search handles GET /api/v1/search.
//
// Query parameters: q (required), limit, offset, oncology_only,
// min_confidence, phase (comma-separated), live (live-evidence fan-out),
// persist (record the search as an analysis artifact).
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", common.DefaultPageLimit)
	if err != nil {
		writeAppError(w, err)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeAppError(w, err)
		return
	}
	minConfidence, err := floatQuery(r, "min_confidence", 0)
	if err != nil {
		writeAppError(w, err)
		return
	}

	req := query.Request{
		Q: r.URL.Query().Get("q"),
		Filters: search.Filters{
			OncologyOnly:  boolQuery(r, "oncology_only"),
			MinConfidence: minConfidence,
			PhaseIn:       parsePhases(r.URL.Query().Get("phase")),
		},
		Offset:           offset,
		Limit:            limit,
		WantLiveEvidence: boolQuery(r, "live"),
		Persist:          boolQuery(r, "persist"),
		Subject:          middleware.ContextGetSubject(r.Context()),
		SessionID:        r.Header.Get("X-Session-ID"),
	}

	resp, err := h.orchestrator.Search(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// parsePhases maps a comma-separated phase parameter onto canonical phases.
// Unrecognized entries resolve to the unknown phase rather than failing the
// request.
func parsePhases(raw string) []repurpose.Phase {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []repurpose.Phase
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, repurpose.ParsePhase(part))
		}
	}
	return out
}
