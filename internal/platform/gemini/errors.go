package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrNilLogger is returned by the constructor when no logger is supplied.
	ErrNilLogger = errors.New("logger cannot be nil")

	// ErrEmptyImage is reported in logs when the provider returned an image entry with no bytes.
	ErrEmptyImage = errors.New("provider returned an image without bytes")
)
