package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Validation errors for Screen.
var (
	ErrEmptyScreenID      = errors.New("screen ID cannot be empty")
	ErrScreenNameTooLong  = errors.New("screen name exceeds maximum length")
	ErrEmptyViewingRecord = errors.New("viewing record requires both viewing and screen IDs")
)

// Screen is an independent display surface. Each screen keeps its own set of
// viewings it has already shown.
type Screen struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewScreen registers a screen with an optional display name.
// An empty name is stored as nil.
func NewScreen(name string) (*Screen, error) {
	s := &Screen{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
	if name != "" {
		s.Name = &name
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks if the Screen has valid data.
func (s *Screen) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyScreenID
	}
	if s.Name != nil && utf8.RuneCountInString(*s.Name) > MaxNameLength {
		return ErrScreenNameTooLong
	}
	return nil
}

// ViewingRecord marks that a screen has been shown a completed viewing.
// At most one record exists per (viewing, screen) pair.
type ViewingRecord struct {
	ViewingID uuid.UUID `json:"viewing_id"`
	ScreenID  uuid.UUID `json:"screen_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// Validate checks if the ViewingRecord has valid data.
func (r *ViewingRecord) Validate() error {
	if r.ViewingID == uuid.Nil || r.ScreenID == uuid.Nil {
		return ErrEmptyViewingRecord
	}
	return nil
}
