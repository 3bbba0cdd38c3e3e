package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/response"
)

type studentLister interface {
	ListStudents(ctx context.Context, limit int, startAfterID string) (*service.StudentListing, error)
}

// StudentHandler exposes the students cursor listing.
type StudentHandler struct {
	students studentLister
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentLister) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Description Newest first. totalStudents is only present on the first page.
// @Tags Students
// @Produce json
// @Param limit query int false "Page size"
// @Param startAfterId query string false "Last id of the previous page"
// @Success 200 {object} service.StudentListing
// @Failure 404 {object} response.Failure
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	listing, err := h.students.ListStudents(c.Request.Context(), queryInt(c, "limit"), strings.TrimSpace(c.Query("startAfterId")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing)
}
