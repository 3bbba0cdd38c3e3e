package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/response"
)

type lectureService interface {
	List(ctx context.Context, filter models.LectureFilter) (*models.LecturePage, error)
	Export(ctx context.Context, filter models.LectureFilter, format string) (*service.ExportFile, error)
}

// LectureHandler exposes the ranked lecture listing.
type LectureHandler struct {
	lectures lectureService
}

// NewLectureHandler constructs LectureHandler.
func NewLectureHandler(lectures lectureService) *LectureHandler {
	return &LectureHandler{lectures: lectures}
}

// List godoc
// @Summary List lectures
// @Description Upcoming lectures first (today, tomorrow, later), then past lectures newest first.
// @Tags Lectures
// @Produce json
// @Param limit query int false "Page size (alias pageSize)"
// @Param page query int false "Page"
// @Param course query string false "Course, 'all' for any"
// @Param faculty query string false "Faculty, 'all' for any"
// @Param branch query string false "Branch, 'all' for any"
// @Param mode query string false "Online or Offline, case-insensitive"
// @Param dateFilter query string false "today|tomorrow|previous|upcoming|this_week|next_week"
// @Param startDate query string false "Range start YYYY-MM-DD"
// @Param endDate query string false "Range end YYYY-MM-DD"
// @Success 200 {object} models.LecturePage
// @Failure 500 {object} response.Failure
// @Router /lectures [get]
func (h *LectureHandler) List(c *gin.Context) {
	page, err := h.lectures.List(c.Request.Context(), lectureFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Export godoc
// @Summary Export lectures
// @Description Renders every lecture matching the listing filters in ranking order.
// @Tags Lectures
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param course query string false "Course"
// @Param dateFilter query string false "Date filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Failure
// @Router /lectures/export [get]
func (h *LectureHandler) Export(c *gin.Context) {
	file, err := h.lectures.Export(c.Request.Context(), lectureFilterFromQuery(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// lectureFilterFromQuery never rejects input: unparsable numbers fall back to
// the engine defaults.
func lectureFilterFromQuery(c *gin.Context) models.LectureFilter {
	filter := models.LectureFilter{
		Course:     strings.TrimSpace(c.Query("course")),
		Faculty:    strings.TrimSpace(c.Query("faculty")),
		Branch:     strings.TrimSpace(c.Query("branch")),
		Mode:       strings.TrimSpace(c.Query("mode")),
		DateFilter: strings.TrimSpace(c.Query("dateFilter")),
		StartDate:  strings.TrimSpace(c.Query("startDate")),
		EndDate:    strings.TrimSpace(c.Query("endDate")),
	}
	filter.Page = queryInt(c, "page")
	filter.PageSize = queryInt(c, "limit")
	if filter.PageSize == 0 {
		filter.PageSize = queryInt(c, "pageSize")
	}
	return filter
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return v
}
