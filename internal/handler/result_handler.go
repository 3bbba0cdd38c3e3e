package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/response"
)

type resultSearcher interface {
	Search(ctx context.Context, search models.ResultSearch) (*service.ResultListing, error)
}

// ResultHandler exposes the results prefix search.
type ResultHandler struct {
	results resultSearcher
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results resultSearcher) *ResultHandler {
	return &ResultHandler{results: results}
}

// Search godoc
// @Summary Search results
// @Description Numeric queries match the start of studentId, anything else the start of the name (case-insensitive).
// @Tags Results
// @Produce json
// @Param q query string false "Student id or name prefix"
// @Param limit query int false "Page size"
// @Param startAfterId query string false "Last id of the previous page"
// @Success 200 {object} service.ResultListing
// @Failure 404 {object} response.Failure
// @Router /results [get]
func (h *ResultHandler) Search(c *gin.Context) {
	listing, err := h.results.Search(c.Request.Context(), models.ResultSearch{
		Query:        c.Query("q"),
		Limit:        queryInt(c, "limit"),
		StartAfterID: strings.TrimSpace(c.Query("startAfterId")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing)
}
