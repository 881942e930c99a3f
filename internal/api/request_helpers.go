package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/api/shared"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/service"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrValidation, paramName)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}
	return id, nil
}

// getPagination reads page and page_size query parameters. Missing values
// are returned as zero so the service applies its defaults.
func getPagination(r *http.Request) (page, pageSize int, err error) {
	q := r.URL.Query()
	if page, err = queryInt(q.Get("page"), "page"); err != nil {
		return 0, 0, err
	}
	if pageSize, err = queryInt(q.Get("page_size"), "page_size"); err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func queryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	return n, nil
}

// effectivePage reports the page and page size the service actually used.
func effectivePage(page, pageSize int) (int, int) {
	limit, offset := service.Paginate(page, pageSize)
	return offset/limit + 1, limit
}

// handleServiceError writes the mapped status and safe message for err.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
