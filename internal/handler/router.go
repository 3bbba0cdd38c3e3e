package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
)

// Handlers bundles everything mounted by Register.
type Handlers struct {
	Lectures  *LectureHandler
	Students  *StudentHandler
	Results   *ResultHandler
	Content   *ContentHandler
	Metrics   *MetricsHandler
	Documents map[string]*DocumentHandler
}

// NewDocumentHandlers returns one CRUD handler per dashboard collection.
func NewDocumentHandlers(documents documentService) map[string]*DocumentHandler {
	out := make(map[string]*DocumentHandler, len(models.Collections))
	for _, collection := range models.Collections {
		out[collection] = NewDocumentHandler(collection, documents)
	}
	return out
}

// Register mounts the dashboard API on group.
func Register(group gin.IRoutes, h Handlers) {
	if h.Metrics != nil {
		group.GET("/ping", h.Metrics.Ping)
	}
	if h.Lectures != nil {
		group.GET("/lectures", h.Lectures.List)
		group.GET("/lectures/export", h.Lectures.Export)
	}
	if h.Students != nil {
		group.GET("/students", h.Students.List)
	}
	if h.Results != nil {
		group.GET("/results", h.Results.Search)
	}
	if h.Content != nil {
		group.GET("/announcements", h.Content.Announcements)
		group.GET("/banners", h.Content.Banners)
	}
	for _, collection := range models.Collections {
		docs, ok := h.Documents[collection]
		if !ok {
			continue
		}
		base := "/" + collection
		group.POST(base, docs.Create)
		group.GET(base+"/:id", docs.Get)
		group.PUT(base+"/:id", docs.Update)
		group.DELETE(base+"/:id", docs.Delete)
	}
}
