package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/abs-dashboard-api/internal/listing"
	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/export"
)

func buildDashboardRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryDocumentRepository()
	now := time.Date(2024, 6, 10, 4, 0, 0, 0, time.UTC)
	clock := listing.NewClock(5*time.Hour+30*time.Minute, func() time.Time { return now })
	engine := listing.NewEngine(store, clock, listing.Config{Collection: models.CollectionLectures}, nil, nil)

	documents := service.NewDocumentService(store, nil, nil, nil, service.DocumentServiceConfig{})
	handlers := Handlers{
		Lectures:  NewLectureHandler(service.NewLectureService(engine, export.NewCSVExporter(), export.NewPDFExporter(), nil)),
		Students:  NewStudentHandler(documents),
		Results:   NewResultHandler(service.NewResultService(store, nil, 30, 200)),
		Content:   NewContentHandler(documents),
		Metrics:   NewMetricsHandler(nil, nil, nil),
		Documents: NewDocumentHandlers(documents),
	}

	router := gin.New()
	Register(router.Group("/api"), handlers)
	Register(router.Group("/"), handlers)
	return router
}

func performRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDashboardRoutesCRUD(t *testing.T) {
	router := buildDashboardRouter(t)

	w := performRequest(router, http.MethodPost, "/api/lectures", map[string]interface{}{"title": "A", "date": "2024-06-10", "mode": "online"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"]
	require.NotEmpty(t, id)

	w = performRequest(router, http.MethodGet, "/lectures/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Online", doc["mode"])
	assert.Contains(t, doc, "createdAt")

	w = performRequest(router, http.MethodPut, "/api/lectures/"+id, map[string]interface{}{"title": "A2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodDelete, "/api/lectures/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(router, http.MethodGet, "/api/lectures/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Lecture not found")
}

func TestDashboardRoutesLectureListing(t *testing.T) {
	router := buildDashboardRouter(t)
	for _, l := range []map[string]interface{}{
		{"title": "D", "date": "2024-06-01"},
		{"title": "B", "date": "2024-06-11"},
		{"title": "A", "date": "2024-06-10"},
	} {
		require.Equal(t, http.StatusCreated, performRequest(router, http.MethodPost, "/api/lectures", l).Code)
	}

	w := performRequest(router, http.MethodGet, "/api/lectures?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Records []map[string]interface{} `json:"records"`
		Total   int                      `json:"totalCount"`
		Pages   int                      `json:"totalPages"`
		HasMore bool                     `json:"hasMore"`
		Server  string                   `json:"serverDate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Records, 2)
	assert.Equal(t, "A", page.Records[0]["title"])
	assert.Equal(t, "B", page.Records[1]["title"])
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.True(t, page.HasMore)
	assert.Equal(t, "2024-06-10", page.Server)

	w = performRequest(router, http.MethodGet, "/lectures/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "lectures-2024-06-10.csv")
}

func TestDashboardRoutesResultsAndContent(t *testing.T) {
	router := buildDashboardRouter(t)
	for _, r := range []map[string]interface{}{
		{"name": "Asha Rao", "studentId": "1001"},
		{"name": "Bala", "studentId": "2001"},
	} {
		require.Equal(t, http.StatusCreated, performRequest(router, http.MethodPost, "/api/results", r).Code)
	}
	require.Equal(t, http.StatusCreated, performRequest(router, http.MethodPost, "/api/announcements", map[string]interface{}{"text": "Exams"}).Code)

	w := performRequest(router, http.MethodGet, "/api/results?q=ASH", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results struct {
		Results      []map[string]interface{} `json:"results"`
		TotalResults *int64                   `json:"totalResults"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results.Results, 1)
	assert.Equal(t, "Asha Rao", results.Results[0]["name"])
	require.NotNil(t, results.TotalResults)
	assert.Equal(t, int64(1), *results.TotalResults)

	w = performRequest(router, http.MethodGet, "/api/results?startAfterId=nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodGet, "/announcements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Exams")

	w = performRequest(router, http.MethodGet, "/api/banners", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = performRequest(router, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalStudents":0`)

	w = performRequest(router, http.MethodGet, "/ping", nil)
	assert.Equal(t, "pong", w.Body.String())
}
