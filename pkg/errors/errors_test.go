package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedErr struct{ code string }

func (e codedErr) Error() string     { return "index missing" }
func (e codedErr) StoreCode() string { return e.code }

func TestFromStoreCarriesDiagnostic(t *testing.T) {
	err := FromStore(fmt.Errorf("find lectures: %w", codedErr{code: "FAILED_PRECONDITION"}), "Failed to fetch lectures")

	assert.Equal(t, "FAILED_PRECONDITION", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "Failed to fetch lectures", err.Message)
	assert.Equal(t, "find lectures: index missing", err.Details)
}

func TestFromStoreWithoutCode(t *testing.T) {
	err := FromStore(errors.New("boom"), "Failed")

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, "boom", err.Details)
}

func TestFromStoreKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrNotFound, "startAfterId not found")

	assert.Same(t, typed, FromStore(typed, "ignored"))
}

func TestFromErrorAndClone(t *testing.T) {
	assert.Nil(t, FromError(nil))
	assert.Equal(t, ErrInternal.Code, FromError(errors.New("x")).Code)

	clone := Clone(ErrNotFound, "Lecture not found")
	assert.Equal(t, "Lecture not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}
