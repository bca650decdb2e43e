package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSMiddleware applies the cross-origin policy for browser clients.
type CORSMiddleware struct {
	handler func(http.Handler) http.Handler
}

// NewCORS builds the CORS policy from the configured origins.  An empty list
// allows any origin, suitable for development.
func NewCORS(origins []string) *CORSMiddleware {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &CORSMiddleware{
		handler: cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderSubject, HeaderTier},
			ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	}
}

// Handler returns the CORS handler.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return m.handler(next)
}
