package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/abs-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
	"github.com/noah-isme/abs-dashboard-api/pkg/response"
)

type documentService interface {
	Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Get(ctx context.Context, collection, id string) (*models.Document, error)
}

// DocumentHandler exposes plain CRUD for one collection.
type DocumentHandler struct {
	collection string
	documents  documentService
}

// NewDocumentHandler constructs DocumentHandler bound to collection.
func NewDocumentHandler(collection string, documents documentService) *DocumentHandler {
	return &DocumentHandler{collection: collection, documents: documents}
}

// Create godoc
// @Summary Create document
// @Description Stores the JSON body with a server createdAt. Works for students, lectures, announcements, banners and results.
// @Tags Documents
// @Accept json
// @Produce json
// @Param collection path string true "Collection"
// @Param payload body object true "Document fields"
// @Success 201 {object} map[string]string
// @Failure 400 {object} response.Failure
// @Router /{collection} [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	fields, ok := h.bind(c)
	if !ok {
		return
	}
	id, err := h.documents.Create(c.Request.Context(), h.collection, fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, id)
}

// Update godoc
// @Summary Merge document fields
// @Description Merges the body into the document, creating it when missing.
// @Tags Documents
// @Accept json
// @Produce json
// @Param collection path string true "Collection"
// @Param id path string true "Document ID"
// @Param payload body object true "Fields to merge"
// @Success 200 {object} map[string]string
// @Router /{collection}/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	fields, ok := h.bind(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.documents.Update(c.Request.Context(), h.collection, id, fields); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id})
}

// Delete godoc
// @Summary Delete document
// @Tags Documents
// @Param collection path string true "Collection"
// @Param id path string true "Document ID"
// @Success 204 "No Content"
// @Router /{collection}/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), h.collection, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get godoc
// @Summary Get document
// @Tags Documents
// @Produce json
// @Param collection path string true "Collection"
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.Failure
// @Router /{collection}/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), h.collection, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

func (h *DocumentHandler) bind(c *gin.Context) (map[string]interface{}, bool) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return nil, false
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return fields, true
}
