package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/pkg/response"
)

type contentLister interface {
	ListAnnouncements(ctx context.Context) ([]models.Document, error)
	ListBanners(ctx context.Context) ([]models.Document, error)
}

// ContentHandler serves the announcement and banner lists.
type ContentHandler struct {
	content contentLister
}

// NewContentHandler constructs ContentHandler.
func NewContentHandler(content contentLister) *ContentHandler {
	return &ContentHandler{content: content}
}

// Announcements godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Router /announcements [get]
func (h *ContentHandler) Announcements(c *gin.Context) {
	docs, err := h.content.ListAnnouncements(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(docs))
}

// Banners godoc
// @Summary List banners
// @Description Ordered by the banner display order.
// @Tags Banners
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Router /banners [get]
func (h *ContentHandler) Banners(c *gin.Context) {
	docs, err := h.content.ListBanners(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nonNil(docs))
}

func nonNil(docs []models.Document) []models.Document {
	if docs == nil {
		return []models.Document{}
	}
	return docs
}
