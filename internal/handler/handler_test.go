package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
)

type lectureServiceMock struct {
	filter models.LectureFilter
	format string
	page   *models.LecturePage
	file   *service.ExportFile
	err    error
}

func (m *lectureServiceMock) List(_ context.Context, filter models.LectureFilter) (*models.LecturePage, error) {
	m.filter = filter
	return m.page, m.err
}

func (m *lectureServiceMock) Export(_ context.Context, filter models.LectureFilter, format string) (*service.ExportFile, error) {
	m.filter = filter
	m.format = format
	return m.file, m.err
}

type documentServiceMock struct {
	collection string
	id         string
	fields     map[string]interface{}
	doc        *models.Document
	err        error
}

func (m *documentServiceMock) Create(_ context.Context, collection string, fields map[string]interface{}) (string, error) {
	m.collection, m.fields = collection, fields
	return "doc-1", m.err
}

func (m *documentServiceMock) Update(_ context.Context, collection, id string, fields map[string]interface{}) error {
	m.collection, m.id, m.fields = collection, id, fields
	return m.err
}

func (m *documentServiceMock) Delete(_ context.Context, collection, id string) error {
	m.collection, m.id = collection, id
	return m.err
}

func (m *documentServiceMock) Get(_ context.Context, collection, id string) (*models.Document, error) {
	m.collection, m.id = collection, id
	return m.doc, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLectureHandlerListParsesQuery(t *testing.T) {
	mock := &lectureServiceMock{page: &models.LecturePage{Records: []models.Document{}, CurrentPage: 2, ServerDate: "2024-06-10"}}
	h := NewLectureHandler(mock)

	c, w := newGinContext(http.MethodGet, "/lectures?pageSize=5&page=2&course=MBA&mode=online&dateFilter=this_week&startDate=2024-06-01", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LectureFilter{
		Course:     "MBA",
		Mode:       "online",
		DateFilter: "this_week",
		StartDate:  "2024-06-01",
		Page:       2,
		PageSize:   5,
	}, mock.filter)
	body := decodeBody(t, w)
	assert.Equal(t, "2024-06-10", body["serverDate"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestLectureHandlerListLenientNumbers(t *testing.T) {
	mock := &lectureServiceMock{page: &models.LecturePage{}}
	h := NewLectureHandler(mock)

	c, w := newGinContext(http.MethodGet, "/lectures?limit=abc&page=-x", nil)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, mock.filter.Page)
	assert.Zero(t, mock.filter.PageSize)
}

func TestLectureHandlerListStoreFailure(t *testing.T) {
	mock := &lectureServiceMock{err: appErrors.FromStore(errors.New("index missing"), "Failed to fetch lectures")}
	h := NewLectureHandler(mock)

	c, w := newGinContext(http.MethodGet, "/lectures", nil)
	h.List(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Failed to fetch lectures", body["error"])
	assert.Equal(t, "index missing", body["details"])
}

func TestLectureHandlerExport(t *testing.T) {
	mock := &lectureServiceMock{file: &service.ExportFile{Name: "lectures-2024-06-10.csv", ContentType: "text/csv; charset=utf-8", Content: []byte("Date\n")}}
	h := NewLectureHandler(mock)

	c, w := newGinContext(http.MethodGet, "/lectures/export?format=csv&branch=HR", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mock.format)
	assert.Equal(t, "HR", mock.filter.Branch)
	assert.Equal(t, `attachment; filename="lectures-2024-06-10.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Date\n", w.Body.String())
}

func TestDocumentHandlerCreate(t *testing.T) {
	mock := &documentServiceMock{}
	h := NewDocumentHandler(models.CollectionBanners, mock)

	c, w := newGinContext(http.MethodPost, "/banners", []byte(`{"order":1,"imageUrl":"x.png"}`))
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "doc-1", decodeBody(t, w)["id"])
	assert.Equal(t, models.CollectionBanners, mock.collection)
	assert.Equal(t, "x.png", mock.fields["imageUrl"])
}

func TestDocumentHandlerRejectsInvalidJSON(t *testing.T) {
	h := NewDocumentHandler(models.CollectionStudents, &documentServiceMock{})

	c, w := newGinContext(http.MethodPost, "/students", []byte(`{"name":`))
	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", decodeBody(t, w)["error"])
}

func TestDocumentHandlerUpdateDeleteGet(t *testing.T) {
	mock := &documentServiceMock{doc: &models.Document{ID: "s1", Fields: map[string]interface{}{"name": "Asha"}}}
	h := NewDocumentHandler(models.CollectionStudents, mock)

	c, w := newGinContext(http.MethodPut, "/students/s1", []byte(`{"name":"Asha R"}`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	h.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", decodeBody(t, w)["id"])
	assert.Equal(t, "Asha R", mock.fields["name"])

	c, w = newGinContext(http.MethodGet, "/students/s1", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "s1", body["id"])
	assert.Equal(t, "Asha", body["name"])

	c, w = newGinContext(http.MethodDelete, "/students/s1", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	h.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDocumentHandlerGetNotFound(t *testing.T) {
	mock := &documentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "Lecture not found")}
	h := NewDocumentHandler(models.CollectionLectures, mock)

	c, w := newGinContext(http.MethodGet, "/lectures/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	h.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Lecture not found", decodeBody(t, w)["error"])
}

func TestMetricsHandlerReadyAndPing(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"store": func(context.Context) error { return nil },
		"cache": func(context.Context) error { return errors.New("connection refused") },
	}, nil)

	c, w := newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "degraded", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["store"])
	assert.Equal(t, "connection refused", checks["cache"])

	c, w = newGinContext(http.MethodGet, "/ping", nil)
	h.Ping(c)
	assert.Equal(t, "pong", w.Body.String())

	c, w = newGinContext(http.MethodGet, "/health", nil)
	h.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}
