package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)

// IsValidationError reports whether err is one of the field validation errors
// produced by domain entities.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrEmptyViewingID),
		errors.Is(err, ErrEmptyName),
		errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrInvalidAge),
		errors.Is(err, ErrContentTooLong),
		errors.Is(err, ErrInvalidViewingStatus),
		errors.Is(err, ErrImageURLWithoutDone),
		errors.Is(err, ErrEmptyScreenID),
		errors.Is(err, ErrScreenNameTooLong),
		errors.Is(err, ErrEmptyViewingRecord):
		return true
	default:
		return false
	}
}
