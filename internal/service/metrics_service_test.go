package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
)

func metricFamilies(t *testing.T, m *MetricsService) map[string]int {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	out := make(map[string]int, len(families))
	for _, f := range families {
		out[f.GetName()] = len(f.GetMetric())
	}
	return out
}

func TestMetricsServiceRecordsDomainSeries(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/lectures", http.StatusOK, 20*time.Millisecond)
	m.ObserveCandidates(models.CollectionLectures, 42)
	m.ObserveStoreQuery(models.CollectionLectures, "find", time.Millisecond, errors.New("boom"))
	m.RecordRateLimited()

	families := metricFamilies(t, m)
	assert.Equal(t, 1, families["http_requests_total"])
	assert.Equal(t, 1, families["listing_candidates"])
	assert.Equal(t, 1, families["store_query_duration_seconds"])
	assert.Equal(t, 1, families["store_errors_total"])
	assert.Equal(t, 1, families["http_rate_limited_total"])
}

func TestMetricsServiceHandlerServesExposition(t *testing.T) {
	m := NewMetricsService()
	m.ObserveCandidates(models.CollectionLectures, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "listing_candidates")

	var nilMetrics *MetricsService
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestInstrumentedStoreIgnoresNotFound(t *testing.T) {
	m := NewMetricsService()
	store := NewInstrumentedStore(repository.NewMemoryDocumentRepository(), m)

	_, err := store.Get(context.Background(), models.CollectionStudents, "missing")
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
	_, err = store.Create(context.Background(), models.CollectionStudents, map[string]interface{}{"name": "Asha"})
	require.NoError(t, err)

	families := metricFamilies(t, m)
	assert.Equal(t, 2, families["store_query_duration_seconds"])
	assert.Zero(t, families["store_errors_total"])
}
