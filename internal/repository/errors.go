package repository

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned by Get when the identifier does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// StoreError wraps a backend failure with the operation and the backend's
// own diagnostic code.
type StoreError struct {
	Op         string
	Collection string
	Code       string
	Err        error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s (code %s): %v", e.Op, e.Collection, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// StoreCode exposes the backend diagnostic code.
func (e *StoreError) StoreCode() string { return e.Code }
