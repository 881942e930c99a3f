package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
)

// FutureViewingStore defines the persistence operations for future viewings.
// Implementations must make MarkCompleted and MarkFailed single conditional
// writes that only succeed while the viewing is still PENDING.
type FutureViewingStore interface {
	// Create saves a new PENDING future viewing.
	// Returns ErrInvalidEntity if the viewing fails validation.
	Create(ctx context.Context, fv *domain.FutureViewing) error

	// GetByID retrieves a future viewing by its unique ID.
	// Returns ErrFutureViewingNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FutureViewing, error)

	// MarkCompleted moves a PENDING viewing to COMPLETED with its image URL.
	// Returns ErrAlreadyFinalized if the viewing is already terminal,
	// or ErrFutureViewingNotFound if it does not exist.
	MarkCompleted(ctx context.Context, id uuid.UUID, imageURL string) error

	// MarkFailed moves a PENDING viewing to FAILED.
	// Same error contract as MarkCompleted.
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// List returns viewings of any status, newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.FutureViewing, error)

	// FindUnseenCompleted returns COMPLETED viewings created at or after since
	// that have no viewing record for screenID, newest first.
	FindUnseenCompleted(
		ctx context.Context,
		screenID uuid.UUID,
		since time.Time,
		limit, offset int,
	) ([]*domain.FutureViewing, error)

	// WithTx returns a new store instance that uses the provided transaction.
	WithTx(tx *sql.Tx) FutureViewingStore
}
