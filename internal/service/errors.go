package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/futureview-api/internal/store"
)

// Common service errors. The API layer maps them to HTTP status codes.
var (
	// ErrFutureViewingNotFound indicates that the requested viewing does not exist.
	ErrFutureViewingNotFound = errors.New("future viewing not found")

	// ErrScreenNotFound indicates that the requested screen does not exist.
	ErrScreenNotFound = errors.New("screen not found")

	// ErrNilDependency is returned by constructors given a nil collaborator.
	ErrNilDependency = errors.New("required dependency is nil")
)

// ServiceError wraps unexpected failures with the service and operation
// that produced them.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
	}
	return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError maps store not-found errors to the service sentinels and
// wraps anything else.
func NewServiceError(service, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrFutureViewingNotFound):
		return ErrFutureViewingNotFound
	case errors.Is(err, store.ErrScreenNotFound):
		return ErrScreenNotFound
	}
	return &ServiceError{Service: service, Op: op, Err: err}
}
