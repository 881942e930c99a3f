package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrProviderUnavailable is returned when the provider call fails: network
	// errors, API errors, quota or timeouts. No retry is scheduled for it.
	ErrProviderUnavailable = errors.New("image generation provider unavailable")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidPrompt is returned when the prompt template cannot be parsed or rendered
	ErrInvalidPrompt = errors.New("invalid prompt template")
)
