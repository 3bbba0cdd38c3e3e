package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/abs-dashboard-api/internal/listing"
	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
	"github.com/noah-isme/abs-dashboard-api/pkg/export"
)

func newLectureServiceForTest(t *testing.T) *LectureService {
	t.Helper()
	repo := repository.NewMemoryDocumentRepository()
	for _, l := range []map[string]interface{}{
		{"title": "Past", "date": "2024-06-01", "course": "MBA", "mode": "Online"},
		{"title": "Today", "date": "2024-06-10", "course": "MBA", "mode": "Offline"},
		{"title": "Later", "date": "2024-06-20", "course": "MBA", "mode": "Online"},
	} {
		_, err := repo.Create(context.Background(), models.CollectionLectures, l)
		require.NoError(t, err)
	}
	now := time.Date(2024, 6, 10, 6, 0, 0, 0, time.UTC)
	clock := listing.NewClock(0, func() time.Time { return now })
	engine := listing.NewEngine(repo, clock, listing.Config{Collection: models.CollectionLectures}, nil, nil)
	return NewLectureService(engine, export.NewCSVExporter(), export.NewPDFExporter(), nil)
}

func TestLectureServiceExportCSV(t *testing.T) {
	svc := newLectureServiceForTest(t)

	file, err := svc.Export(context.Background(), models.LectureFilter{Course: "MBA"}, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "lectures-2024-06-10.csv", file.Name)
	assert.Contains(t, file.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(file.Content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "Date", records[0][0])
	assert.Equal(t, []string{"2024-06-10", "2024-06-20", "2024-06-01"}, []string{records[1][0], records[2][0], records[3][0]})
}

func TestLectureServiceExportPDF(t *testing.T) {
	svc := newLectureServiceForTest(t)

	file, err := svc.Export(context.Background(), models.LectureFilter{Mode: "online"}, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
}

func TestLectureServiceExportRejectsUnknownFormat(t *testing.T) {
	svc := newLectureServiceForTest(t)

	_, err := svc.Export(context.Background(), models.LectureFilter{}, "xlsx")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestLectureServiceList(t *testing.T) {
	svc := newLectureServiceForTest(t)

	page, err := svc.List(context.Background(), models.LectureFilter{DateFilter: "upcoming"})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "Later", page.Records[0].String("title"))
}
