package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/phrazzld/futureview-api/internal/api/shared"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/service"
)

// FutureViewingHandler handles future viewing HTTP requests
type FutureViewingHandler struct {
	viewings service.FutureViewingService
	logger   *slog.Logger
}

// NewFutureViewingHandler creates a new FutureViewingHandler
func NewFutureViewingHandler(viewings service.FutureViewingService, log *slog.Logger) *FutureViewingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FutureViewingHandler{
		viewings: viewings,
		logger:   log.With(slog.String("component", "future_viewing_handler")),
	}
}

// Submit handles POST /api/future-viewings. It answers 202 with the PENDING
// viewing; clients poll GET /api/future-viewings/{id} for the outcome.
func (h *FutureViewingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitFutureViewingRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	fv, err := h.viewings.Submit(r.Context(), domain.GenerationParams{
		Name:    req.Name,
		Age:     *req.Age,
		Content: req.Content,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("submission accepted",
		slog.String("viewing_id", fv.ID.String()))
	render.Status(r, http.StatusAccepted)
	_ = render.Render(w, r, futureViewingToResponse(fv))
}

// Get handles GET /api/future-viewings/{id}.
func (h *FutureViewingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid future viewing ID", err)
		return
	}

	fv, err := h.viewings.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = render.Render(w, r, futureViewingToResponse(fv))
}

// List handles GET /api/future-viewings?page=&page_size=.
func (h *FutureViewingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := getPagination(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	viewings, err := h.viewings.ListAll(r.Context(), page, pageSize)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	page, pageSize = effectivePage(page, pageSize)
	_ = render.Render(w, r, futureViewingsToListResponse(viewings, page, pageSize))
}
