package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreIsolatedPerInstance(t *testing.T) {
	first := New("test")
	second := New("test")

	first.BooksWritten.Add(3)
	first.PagesCompleted.WithLabelValues("fantasy", "data").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(first.BooksWritten))
	assert.Equal(t, 0.0, testutil.ToFloat64(second.BooksWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.PagesCompleted.WithLabelValues("fantasy", "data")))
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New("")
	m.EnrichmentFailed.WithLabelValues("tags").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lovelybooks_enrichment_failed_total{stage="tags"} 1`)
}
