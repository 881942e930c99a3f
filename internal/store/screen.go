package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
)

// ScreenStore defines the persistence operations for screens and the
// viewing records that remember what each screen has shown.
type ScreenStore interface {
	// Create saves a newly registered screen.
	Create(ctx context.Context, s *domain.Screen) error

	// GetByID retrieves a screen by ID.
	// Returns ErrScreenNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Screen, error)

	// RecordViewings inserts one viewing record per viewing ID for the screen
	// as a single batch. If any pair already exists the whole batch fails with
	// an error wrapping ErrDuplicate and nothing is recorded.
	RecordViewings(ctx context.Context, screenID uuid.UUID, viewingIDs []uuid.UUID, viewedAt time.Time) error

	// WithTx returns a new store instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ScreenStore
}
