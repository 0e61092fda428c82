package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/research-analyst/internal/pipeline"
	"github.com/jonathan/research-analyst/internal/rendering"
	"github.com/jonathan/research-analyst/internal/schemas"
	"github.com/jonathan/research-analyst/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing document referenced by a request
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		notFoundErr   *ErrNotFound
		storeNotFound *store.NotFoundError
		schemaErr     *schemas.ValidationError
		renderErr     *rendering.RenderError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &schemaErr), errors.As(err, &renderErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr), errors.As(err, &storeNotFound), errors.Is(err, pipeline.ErrTaskNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
