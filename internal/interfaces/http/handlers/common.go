// Package handlers implements the HTTP endpoint handlers for the public API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/trovesx/OncoPurpose/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeAppError maps application errors to HTTP status codes.  Internal
// errors are masked.
func writeAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String(), Message: err.Error()}
	if status >= http.StatusInternalServerError {
		resp.Message = "internal server error"
	}
	writeJSON(w, status, resp)
}

// intQuery parses an integer query parameter with a default.
func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation(key, "must be an integer")
	}
	return v, nil
}

// floatQuery parses a float query parameter with a default.
func floatQuery(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.Validation(key, "must be a number")
	}
	return v, nil
}

// boolQuery parses a boolean query parameter, treating absence as false.
func boolQuery(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "1", "true", "yes":
		return true
	}
	return false
}
