package task

import "errors"

// Common errors returned by the task package
var (
	// ErrQueueClosed is returned by Push after Close, and by Pop once the
	// queue is closed and drained.
	ErrQueueClosed = errors.New("task queue is closed")

	// ErrNilViewingID is returned when a descriptor has no viewing ID.
	ErrNilViewingID = errors.New("viewing ID cannot be nil")

	// ErrPersistenceConflict means the terminal write found the viewing
	// already finalized. The worker treats it as a no-op.
	ErrPersistenceConflict = errors.New("future viewing already finalized by another writer")

	// ErrPersistenceUnavailable means the job store could not be read or written.
	ErrPersistenceUnavailable = errors.New("job store unavailable")

	ErrNilQueue     = errors.New("queue cannot be nil")
	ErrNilStore     = errors.New("future viewing store cannot be nil")
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilArtifacts = errors.New("artifact store cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
)
