package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/phrazzld/futureview-api/internal/api/shared"
	"github.com/phrazzld/futureview-api/internal/service"
	"github.com/phrazzld/futureview-api/internal/service/recency"
)

// ScreenHandler handles screen registration and per-screen recent selections.
type ScreenHandler struct {
	screens  service.ScreenService
	viewings service.FutureViewingService
	logger   *slog.Logger
}

// NewScreenHandler creates a new ScreenHandler
func NewScreenHandler(
	screens service.ScreenService,
	viewings service.FutureViewingService,
	log *slog.Logger,
) *ScreenHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ScreenHandler{
		screens:  screens,
		viewings: viewings,
		logger:   log.With(slog.String("component", "screen_handler")),
	}
}

// Register handles POST /api/screens. An empty body registers an unnamed screen.
func (h *ScreenHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterScreenRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	screen, err := h.screens.Register(r.Context(), req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, screenToResponse(screen))
}

// Get handles GET /api/screens/{id}.
func (h *ScreenHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid screen ID", err)
		return
	}

	screen, err := h.screens.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = render.Render(w, r, screenToResponse(screen))
}

// Recent handles GET /api/screens/{id}/recent. Every call marks the returned
// viewings as seen by the screen, so repeating it returns the next items.
func (h *ScreenHandler) Recent(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := getPagination(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	// the raw path value is passed through; the selector owns its validation
	viewings, err := h.viewings.ListRecent(r.Context(), chi.URLParam(r, "id"), page, pageSize)
	if err != nil {
		opts := []shared.ResponseOption{}
		if errors.Is(err, recency.ErrConcurrentMarkConflict) {
			opts = append(opts, shared.WithElevatedLogLevel())
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err, opts...)
		return
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = recency.DefaultPageSize
	}
	_ = render.Render(w, r, futureViewingsToListResponse(viewings, page, pageSize))
}
