package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/abs-dashboard-api/pkg/errors"
)

// Failure is the legacy error body consumed by the dashboard front-end.
type Failure struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// JSON sends a success payload as-is; the dashboard expects flat bodies.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, payload)
}

// Created responds with HTTP 201 Created and the new identifier.
func Created(c *gin.Context, id string) {
	JSON(c, http.StatusCreated, gin.H{"id": id})
}

// Error sends a failure body converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Failure{Error: appErr.Message, Details: appErr.Details, Code: appErr.Code})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
