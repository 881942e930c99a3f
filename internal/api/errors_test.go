package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/service"
	"github.com/phrazzld/futureview-api/internal/service/recency"
	"github.com/phrazzld/futureview-api/internal/store"
	"github.com/phrazzld/futureview-api/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid screen", fmt.Errorf("%w: %q", recency.ErrInvalidScreenReference, "x"), http.StatusBadRequest},
		{"domain validation", domain.ErrInvalidAge, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"viewing not found", service.ErrFutureViewingNotFound, http.StatusNotFound},
		{"screen not found", &service.ServiceError{Service: "s", Op: "o", Err: store.ErrScreenNotFound}, http.StatusNotFound},
		{"mark conflict", &service.ServiceError{Service: "s", Op: "o", Err: recency.ErrConcurrentMarkConflict}, http.StatusConflict},
		{"queue closed", task.ErrQueueClosed, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage_DoesNotLeak(t *testing.T) {
	internal := errors.New("pq: password authentication failed for user admin at 10.0.0.3")

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Screen not found", GetSafeErrorMessage(service.ErrScreenNotFound))
	assert.Equal(t, "Invalid request: age out of range", GetSafeErrorMessage(domain.ErrInvalidAge))
}

func TestSanitizeValidationError(t *testing.T) {
	type sample struct {
		PageSize int `validate:"gte=1"`
	}
	err := validator.New().Struct(sample{})

	assert.Equal(t, "Invalid page_size: too small", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}
