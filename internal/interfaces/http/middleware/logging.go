package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/prometheus"
)

// LoggingMiddleware emits one structured access log line per request and
// feeds the HTTP request metrics.
type LoggingMiddleware struct {
	log     logging.Logger
	metrics *prommetrics.Metrics
}

// NewLogging creates a LoggingMiddleware.
func NewLogging(log logging.Logger, metrics *prommetrics.Metrics) *LoggingMiddleware {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &LoggingMiddleware{log: log.Named("http"), metrics: metrics}
}

// Handler wraps the next handler with access logging and metrics.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		if m.metrics != nil {
			m.metrics.HTTPInFlight.Inc()
			defer m.metrics.HTTPInFlight.Dec()
		}

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		if m.metrics != nil {
			m.metrics.ObserveHTTPRequest(r.Method, route, http.StatusText(status), elapsed)
		}

		m.log.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("route", route),
			logging.Int("status", status),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("elapsed", elapsed),
			logging.String("request_id", chimw.GetReqID(r.Context())),
			logging.String("subject", ContextGetSubject(r.Context())),
		)
	})
}

// routePattern returns the chi route pattern when available, so metrics do
// not explode on path parameters.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
