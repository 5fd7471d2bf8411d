package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/apply-engine/internal/types"
)

// ErrValidation indicates a malformed request parameter
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the HTTP status code for an error returned by a handler.
func HTTPStatus(err error) int {
	var verr *ErrValidation
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.Is(err, types.ErrApplicationNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
