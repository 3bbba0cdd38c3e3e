package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/abs-dashboard-api/internal/listing"
	"github.com/noah-isme/abs-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
	"github.com/noah-isme/abs-dashboard-api/pkg/export"
)

// Export formats accepted by LectureService.Export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var lectureExportColumns = []export.Column{
	{Field: models.LectureFieldDate, Header: "Date"},
	{Field: "time", Header: "Time"},
	{Field: "title", Header: "Title"},
	{Field: models.LectureFieldCourse, Header: "Course"},
	{Field: models.LectureFieldFaculty, Header: "Faculty"},
	{Field: models.LectureFieldBranch, Header: "Branch"},
	{Field: models.LectureFieldMode, Header: "Mode"},
}

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered lecture schedule.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// LectureService serves the ranked lecture listing and its exports.
type LectureService struct {
	engine    *listing.Engine
	renderers map[string]renderer
	logger    *zap.Logger
}

// NewLectureService constructs the service.
func NewLectureService(engine *listing.Engine, csv *export.CSVExporter, pdf *export.PDFExporter, logger *zap.Logger) *LectureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderers := map[string]renderer{}
	if csv != nil {
		renderers[ExportFormatCSV] = csv
	}
	if pdf != nil {
		renderers[ExportFormatPDF] = pdf
	}
	return &LectureService{engine: engine, renderers: renderers, logger: logger}
}

// List returns one page of the ranked lectures matching filter.
func (s *LectureService) List(ctx context.Context, filter models.LectureFilter) (*models.LecturePage, error) {
	return s.engine.List(ctx, filter)
}

// Export renders every lecture matching filter, in ranking order.
func (s *LectureService) Export(ctx context.Context, filter models.LectureFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	ranked, ref, err := s.engine.Ranked(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Columns: lectureExportColumns, Rows: make([]map[string]string, 0, len(ranked))}
	for _, doc := range ranked {
		row := make(map[string]string, len(lectureExportColumns))
		for _, col := range lectureExportColumns {
			row[col.Field] = doc.String(col.Field)
		}
		data.Rows = append(data.Rows, row)
	}

	title := fmt.Sprintf("Lecture schedule as of %s", ref.TodayString())
	content, err := r.Render(data, title)
	if err != nil {
		s.logger.Error("render lecture export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Name:        fmt.Sprintf("lectures-%s.%s", ref.TodayString(), r.Extension()),
		ContentType: r.ContentType(),
		Content:     content,
	}, nil
}
