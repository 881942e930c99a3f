package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/store"
)

// PostgresScreenStore implements store.ScreenStore using PostgreSQL.
type PostgresScreenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresScreenStore creates a new PostgreSQL implementation of the ScreenStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresScreenStore(db store.DBTX, logger *slog.Logger) *PostgresScreenStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresScreenStore{
		db:     db,
		logger: logger.With(slog.String("component", "screen_store")),
	}
}

// Ensure PostgresScreenStore implements store.ScreenStore interface
var _ store.ScreenStore = (*PostgresScreenStore)(nil)

// WithTx implements store.ScreenStore.WithTx
func (s *PostgresScreenStore) WithTx(tx *sql.Tx) store.ScreenStore {
	return &PostgresScreenStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ScreenStore.Create
func (s *PostgresScreenStore) Create(ctx context.Context, screen *domain.Screen) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := screen.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO screens (id, name, created_at) VALUES ($1, $2, $3)`,
		screen.ID,
		screen.Name,
		screen.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create screen",
			slog.String("error", err.Error()),
			slog.String("screen_id", screen.ID.String()))
		return MapError(err)
	}

	log.Info("screen registered", slog.String("screen_id", screen.ID.String()))
	return nil
}

// GetByID implements store.ScreenStore.GetByID
func (s *PostgresScreenStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Screen, error) {
	var (
		screen domain.Screen
		name   sql.NullString
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM screens WHERE id = $1`, id,
	).Scan(&screen.ID, &name, &screen.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrScreenNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get screen",
			slog.String("error", err.Error()),
			slog.String("screen_id", id.String()))
		return nil, MapError(err)
	}

	if name.Valid {
		n := name.String
		screen.Name = &n
	}
	return &screen, nil
}

// RecordViewings implements store.ScreenStore.RecordViewings.
// All pairs go into one INSERT so the primary key check covers the whole batch.
func (s *PostgresScreenStore) RecordViewings(
	ctx context.Context,
	screenID uuid.UUID,
	viewingIDs []uuid.UUID,
	viewedAt time.Time,
) error {
	if len(viewingIDs) == 0 {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildRecordViewingsInsert(screenID, viewingIDs, viewedAt)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if IsUniqueViolation(err) {
			log.Warn("viewing record batch hit an existing pair",
				slog.String("screen_id", screenID.String()),
				slog.Int("batch_size", len(viewingIDs)))
			return fmt.Errorf("%w: %v", store.ErrViewingRecordExists, err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("viewing record batch references a missing screen or viewing",
				slog.String("screen_id", screenID.String()))
			return MapError(err)
		}
		log.Error("failed to record viewings",
			slog.String("error", err.Error()),
			slog.String("screen_id", screenID.String()))
		return MapError(err)
	}

	log.Debug("viewings recorded",
		slog.String("screen_id", screenID.String()),
		slog.Int("count", len(viewingIDs)))
	return nil
}

// buildRecordViewingsInsert renders a multi-row INSERT. $1 is the screen,
// $2 the viewed-at time, and each viewing ID follows from $3.
func buildRecordViewingsInsert(screenID uuid.UUID, viewingIDs []uuid.UUID, viewedAt time.Time) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO viewing_records (viewing_id, screen_id, viewed_at) VALUES ")

	args := make([]any, 0, len(viewingIDs)+2)
	args = append(args, screenID, viewedAt)
	for i, id := range viewingIDs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "($%d, $1, $2)", i+3)
		args = append(args, id)
	}

	return b.String(), args
}
