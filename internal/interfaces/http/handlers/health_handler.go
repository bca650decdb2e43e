package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/trovesx/OncoPurpose/internal/corpus"
)

// CheckFunc probes one dependency.  A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	idx    *corpus.Index
	checks map[string]CheckFunc
}

// NewHealth creates a HealthHandler.  Optional dependency checks (cache,
// database) report per-component status on the readiness probe but only the
// corpus gates readiness; the service degrades rather than fails without its
// optional backends.
func NewHealth(idx *corpus.Index, checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{idx: idx, checks: checks}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.checks)+1)

	ready := h.idx != nil && h.idx.Stats().TotalDrugs > 0
	if ready {
		components["corpus"] = "ok"
	} else {
		components["corpus"] = "empty"
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = err.Error()
		} else {
			components[name] = "ok"
		}
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":     state,
		"components": components,
	})
}
