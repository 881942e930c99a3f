package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ViewingStatus represents the processing state of a future viewing.
type ViewingStatus string

// Possible future viewing status values. PENDING is the only non-terminal state.
const (
	ViewingStatusPending   ViewingStatus = "PENDING"
	ViewingStatusCompleted ViewingStatus = "COMPLETED"
	ViewingStatusFailed    ViewingStatus = "FAILED"
)

// Field limits for generation parameters.
const (
	MaxNameLength    = 200
	MaxContentLength = 4000
	MaxAge           = 150
)

// Validation errors for FutureViewing.
var (
	ErrEmptyViewingID       = errors.New("future viewing ID cannot be empty")
	ErrEmptyName            = errors.New("name cannot be empty")
	ErrNameTooLong          = errors.New("name exceeds maximum length")
	ErrInvalidAge           = errors.New("age out of range")
	ErrContentTooLong       = errors.New("content exceeds maximum length")
	ErrInvalidViewingStatus = errors.New("invalid future viewing status")
	ErrImageURLWithoutDone  = errors.New("image URL is only allowed on completed viewings")
)

// GenerationParams is the immutable input of a future viewing: who is imagining
// the future and what they imagine.
type GenerationParams struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Content string `json:"content"`
}

// Validate checks the generation parameters against the field limits.
func (p GenerationParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if p.Age < 0 || p.Age > MaxAge {
		return ErrInvalidAge
	}
	if strings.TrimSpace(p.Content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(p.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// FutureViewing is a single request for an image of someone's imagined future.
// It starts PENDING and moves exactly once to COMPLETED or FAILED.
type FutureViewing struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Age       int           `json:"age"`
	Content   string        `json:"content"`
	Status    ViewingStatus `json:"status"`
	ImageURL  *string       `json:"image_url,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewFutureViewing creates a PENDING future viewing for the given parameters.
// Returns an error if validation fails.
func NewFutureViewing(params GenerationParams) (*FutureViewing, error) {
	fv := &FutureViewing{
		ID:        uuid.New(),
		Name:      params.Name,
		Age:       params.Age,
		Content:   params.Content,
		Status:    ViewingStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := fv.Validate(); err != nil {
		return nil, err
	}

	return fv, nil
}

// Params returns the generation parameters snapshot of the viewing.
func (fv *FutureViewing) Params() GenerationParams {
	return GenerationParams{Name: fv.Name, Age: fv.Age, Content: fv.Content}
}

// IsTerminal reports whether no further status transition is legal.
func (fv *FutureViewing) IsTerminal() bool {
	return fv.Status.IsTerminal()
}

// Validate checks if the FutureViewing has valid data.
func (fv *FutureViewing) Validate() error {
	if fv.ID == uuid.Nil {
		return ErrEmptyViewingID
	}

	if err := fv.Params().Validate(); err != nil {
		return err
	}

	if !fv.Status.IsValid() {
		return ErrInvalidViewingStatus
	}

	if fv.ImageURL != nil && fv.Status != ViewingStatusCompleted {
		return ErrImageURLWithoutDone
	}

	return nil
}

// IsValid reports whether the status is one of the known values.
func (s ViewingStatus) IsValid() bool {
	switch s {
	case ViewingStatusPending, ViewingStatusCompleted, ViewingStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status is COMPLETED or FAILED.
func (s ViewingStatus) IsTerminal() bool {
	return s == ViewingStatusCompleted || s == ViewingStatusFailed
}
