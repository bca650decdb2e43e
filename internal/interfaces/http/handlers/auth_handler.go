package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/trovesx/OncoPurpose/internal/auth"
	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// AuthHandler serves the refresh-token lifecycle endpoints.
type AuthHandler struct {
	manager *auth.Manager
}

// NewAuth creates an AuthHandler.
func NewAuth(manager *auth.Manager) *AuthHandler {
	return &AuthHandler{manager: manager}
}

type issueRequest struct {
	Subject string `json:"subject"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Issue handles POST /api/v1/auth/token.  The subject is expected to have
// been authenticated by the edge before this endpoint is reached.
func (h *AuthHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperrors.Validation("body", "invalid JSON body"))
		return
	}
	if req.Subject == "" {
		writeAppError(w, apperrors.Validation("subject", "subject must not be empty"))
		return
	}

	token, err := h.manager.Issue(r.Context(), req.Subject)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// Refresh handles POST /api/v1/auth/refresh.  The presented refresh token is
// rotated: the old token is invalidated and a new pair is returned.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperrors.Validation("body", "invalid JSON body"))
		return
	}

	token, err := h.manager.Rotate(r.Context(), req.RefreshToken)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// Revoke handles POST /api/v1/auth/revoke.  Revoking an unknown token
// succeeds, so clients can always log out.
func (h *AuthHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, apperrors.Validation("body", "invalid JSON body"))
		return
	}

	if err := h.manager.Revoke(r.Context(), req.RefreshToken); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
