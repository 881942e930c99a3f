package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/service"
	"github.com/phrazzld/futureview-api/internal/service/recency"
	"github.com/phrazzld/futureview-api/internal/store"
	"github.com/phrazzld/futureview-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the error itself.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Bad request errors
	case errors.Is(err, recency.ErrInvalidScreenReference),
		errors.Is(err, store.ErrInvalidEntity),
		domain.IsValidationError(err):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrFutureViewingNotFound),
		errors.Is(err, service.ErrScreenNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, recency.ErrConcurrentMarkConflict),
		store.IsDuplicateError(err):
		return http.StatusConflict

	// The queue only closes during shutdown
	case errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, recency.ErrInvalidScreenReference):
		return "Invalid screen ID"
	case errors.Is(err, service.ErrFutureViewingNotFound):
		return "Future viewing not found"
	case errors.Is(err, service.ErrScreenNotFound), errors.Is(err, store.ErrScreenNotFound):
		return "Screen not found"
	case errors.Is(err, recency.ErrConcurrentMarkConflict):
		return "Another request for this screen is in progress, please retry"
	case errors.Is(err, task.ErrQueueClosed):
		return "Service is shutting down"
	case domain.IsValidationError(err):
		// domain validation messages name the field and never carry input
		return "Invalid request: " + err.Error()
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message naming
// the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", toSnake(fe.Field()), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// toSnake converts a Go field name like PageSize to page_size.
func toSnake(s string) string {
	out := make([]byte, 0, len(s)+4)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
