package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTPRequest(t *testing.T) {
	m := NewForTesting()
	m.ObserveHTTPRequest("GET", "/api/v1/search", "200", 15*time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/search", "200", 5*time.Millisecond)

	c := m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/search", "200")
	assert.Equal(t, float64(2), testutil.ToFloat64(c))
}

func TestObserveSearch(t *testing.T) {
	m := NewForTesting()
	m.ObserveSearch("hit", 12, 3*time.Millisecond)
	m.ObserveSearch("miss", 0, 20*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesTotal.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchesTotal.WithLabelValues("miss")))
}

func TestObserveFetch(t *testing.T) {
	m := NewForTesting()
	m.ObserveFetch("pubmed", "ok", 120*time.Millisecond)
	m.ObserveFetch("pubmed", "degraded", 30*time.Second)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetcherRequestsTotal.WithLabelValues("pubmed", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FetcherRequestsTotal.WithLabelValues("pubmed", "degraded")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	m := NewForTesting()
	m.CorpusDrugsLoaded.Set(240)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "oncopurpose_corpus_drugs_loaded 240")
}
