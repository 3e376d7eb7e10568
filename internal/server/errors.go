package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/job-recommender/internal/ingestion"
	"github.com/jonathan/job-recommender/internal/schemas"
	"github.com/jonathan/job-recommender/internal/types"
)

// ErrValidation indicates a request that cannot be processed as sent.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		maxBytes    *http.MaxBytesError
		unsupported *ingestion.UnsupportedFormatError
		extraction  *ingestion.ExtractionError
		requestErr  *types.RequestError
		schemaErr   *schemas.ValidationError
		validation  *ErrValidation
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.As(err, &requestErr), errors.As(err, &schemaErr), errors.As(err, &validation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientError builds the envelope for a 4xx response.
func clientError(err error) types.ErrorResponse {
	var (
		requestErr *types.RequestError
		validation *ErrValidation
		schemaErr  *schemas.ValidationError
		maxBytes   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &requestErr):
		return types.ErrorResponse{
			Error:  fmt.Sprintf("Invalid '%s' parameter", requestErr.Field),
			Detail: requestErr.Message,
		}
	case errors.As(err, &validation):
		return types.ErrorResponse{
			Error:  fmt.Sprintf("Invalid '%s' parameter", validation.Field),
			Detail: validation.Message,
		}
	case errors.As(err, &schemaErr):
		return types.ErrorResponse{Error: "Invalid request body", Detail: schemaErr.Error()}
	case errors.As(err, &maxBytes):
		return types.ErrorResponse{
			Error:  "Request too large",
			Detail: fmt.Sprintf("body exceeds %d bytes", maxBytes.Limit),
		}
	default:
		return types.ErrorResponse{Error: err.Error()}
	}
}
