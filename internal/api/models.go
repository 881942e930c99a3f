package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/futureview-api/internal/domain"
)

// SubmitFutureViewingRequest is the body of POST /api/future-viewings.
// Age is a pointer so that zero is accepted but a missing age is not.
type SubmitFutureViewingRequest struct {
	Name    string `json:"name"    validate:"required,max=200"`
	Age     *int   `json:"age"     validate:"required,gte=0,lte=150"`
	Content string `json:"content" validate:"required,max=4000"`
}

// RegisterScreenRequest is the body of POST /api/screens.
type RegisterScreenRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// FutureViewingResponse is the public representation of a future viewing.
type FutureViewingResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Render implements render.Renderer.
func (FutureViewingResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// FutureViewingListResponse wraps a page of viewings.
type FutureViewingListResponse struct {
	Items    []FutureViewingResponse `json:"items"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// Render implements render.Renderer.
func (FutureViewingListResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// ScreenResponse is the public representation of a screen.
type ScreenResponse struct {
	ID        string    `json:"id"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Render implements render.Renderer.
func (ScreenResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

func futureViewingToResponse(fv *domain.FutureViewing) FutureViewingResponse {
	return FutureViewingResponse{
		ID:        fv.ID.String(),
		Name:      fv.Name,
		Age:       fv.Age,
		Content:   fv.Content,
		Status:    string(fv.Status),
		ImageURL:  fv.ImageURL,
		CreatedAt: fv.CreatedAt,
	}
}

func futureViewingsToListResponse(viewings []*domain.FutureViewing, page, pageSize int) FutureViewingListResponse {
	items := make([]FutureViewingResponse, 0, len(viewings))
	for _, fv := range viewings {
		items = append(items, futureViewingToResponse(fv))
	}
	return FutureViewingListResponse{Items: items, Page: page, PageSize: pageSize}
}

func screenToResponse(s *domain.Screen) ScreenResponse {
	return ScreenResponse{ID: s.ID.String(), Name: s.Name, CreatedAt: s.CreatedAt}
}
