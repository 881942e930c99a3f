package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/store"
)

const futureViewingColumns = `id, name, age, content, status, image_url, created_at`

// PostgresFutureViewingStore implements store.FutureViewingStore
// using a PostgreSQL database as the storage backend.
type PostgresFutureViewingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFutureViewingStore creates a new PostgreSQL implementation of the
// FutureViewingStore interface. It accepts a database connection or transaction
// that is managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresFutureViewingStore(db store.DBTX, logger *slog.Logger) *PostgresFutureViewingStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFutureViewingStore{
		db:     db,
		logger: logger.With(slog.String("component", "future_viewing_store")),
	}
}

// Ensure PostgresFutureViewingStore implements store.FutureViewingStore interface
var _ store.FutureViewingStore = (*PostgresFutureViewingStore)(nil)

// WithTx implements store.FutureViewingStore.WithTx
func (s *PostgresFutureViewingStore) WithTx(tx *sql.Tx) store.FutureViewingStore {
	return &PostgresFutureViewingStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.FutureViewingStore.Create
func (s *PostgresFutureViewingStore) Create(ctx context.Context, fv *domain.FutureViewing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := fv.Validate(); err != nil {
		log.Warn("future viewing validation failed during create",
			slog.String("error", err.Error()),
			slog.String("viewing_id", fv.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO future_viewings (id, name, age, content, status, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		fv.ID,
		fv.Name,
		fv.Age,
		fv.Content,
		string(fv.Status),
		fv.ImageURL,
		fv.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create future viewing",
			slog.String("error", err.Error()),
			slog.String("viewing_id", fv.ID.String()))
		return MapError(err)
	}

	log.Info("future viewing created",
		slog.String("viewing_id", fv.ID.String()),
		slog.String("status", string(fv.Status)))
	return nil
}

// GetByID implements store.FutureViewingStore.GetByID
func (s *PostgresFutureViewingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.FutureViewing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + futureViewingColumns + ` FROM future_viewings WHERE id = $1`

	fv, err := scanFutureViewing(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("future viewing not found", slog.String("viewing_id", id.String()))
			return nil, store.ErrFutureViewingNotFound
		}
		log.Error("failed to get future viewing",
			slog.String("error", err.Error()),
			slog.String("viewing_id", id.String()))
		return nil, MapError(err)
	}

	return fv, nil
}

// MarkCompleted implements store.FutureViewingStore.MarkCompleted
func (s *PostgresFutureViewingStore) MarkCompleted(ctx context.Context, id uuid.UUID, imageURL string) error {
	query := `
		UPDATE future_viewings
		SET status = 'COMPLETED', image_url = $2
		WHERE id = $1 AND status = 'PENDING'
	`
	return s.finalize(ctx, id, domain.ViewingStatusCompleted, query, id, imageURL)
}

// MarkFailed implements store.FutureViewingStore.MarkFailed
func (s *PostgresFutureViewingStore) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE future_viewings
		SET status = 'FAILED', image_url = NULL
		WHERE id = $1 AND status = 'PENDING'
	`
	return s.finalize(ctx, id, domain.ViewingStatusFailed, query, id)
}

// finalize runs a conditional terminal write. When no row matched it looks
// the viewing up once to tell "missing" apart from "already terminal".
func (s *PostgresFutureViewingStore) finalize(
	ctx context.Context,
	id uuid.UUID,
	target domain.ViewingStatus,
	query string,
	args ...any,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to finalize future viewing",
			slog.String("error", err.Error()),
			slog.String("viewing_id", id.String()),
			slog.String("target_status", string(target)))
		return MapError(err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 1 {
		log.Info("future viewing finalized",
			slog.String("viewing_id", id.String()),
			slog.String("status", string(target)))
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM future_viewings WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrFutureViewingNotFound
	}
	if err != nil {
		return MapError(err)
	}

	log.Debug("terminal write skipped, viewing already finalized",
		slog.String("viewing_id", id.String()),
		slog.String("current_status", current),
		slog.String("target_status", string(target)))
	return fmt.Errorf("%w: viewing %s is %s", store.ErrAlreadyFinalized, id, current)
}

// List implements store.FutureViewingStore.List
func (s *PostgresFutureViewingStore) List(ctx context.Context, limit, offset int) ([]*domain.FutureViewing, error) {
	query := `
		SELECT ` + futureViewingColumns + `
		FROM future_viewings
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`
	return s.query(ctx, "list", query, limit, offset)
}

// FindUnseenCompleted implements store.FutureViewingStore.FindUnseenCompleted
func (s *PostgresFutureViewingStore) FindUnseenCompleted(
	ctx context.Context,
	screenID uuid.UUID,
	since time.Time,
	limit, offset int,
) ([]*domain.FutureViewing, error) {
	query := `
		SELECT ` + futureViewingColumns + `
		FROM future_viewings fv
		WHERE fv.status = 'COMPLETED'
		  AND fv.created_at >= $2
		  AND NOT EXISTS (
		      SELECT 1 FROM viewing_records vr
		      WHERE vr.viewing_id = fv.id AND vr.screen_id = $1
		  )
		ORDER BY fv.created_at DESC, fv.id
		LIMIT $3 OFFSET $4
	`
	return s.query(ctx, "find_unseen_completed", query, screenID, since, limit, offset)
}

func (s *PostgresFutureViewingStore) query(
	ctx context.Context,
	op string,
	query string,
	args ...any,
) ([]*domain.FutureViewing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query future viewings",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	viewings := make([]*domain.FutureViewing, 0)
	for rows.Next() {
		fv, err := scanFutureViewing(rows)
		if err != nil {
			return nil, store.NewStoreError("future_viewing", op, "failed to scan row", err)
		}
		viewings = append(viewings, fv)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("future_viewing", op, "row iteration failed", err)
	}

	return viewings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFutureViewing(row rowScanner) (*domain.FutureViewing, error) {
	var (
		fv       domain.FutureViewing
		status   string
		imageURL sql.NullString
	)

	if err := row.Scan(
		&fv.ID,
		&fv.Name,
		&fv.Age,
		&fv.Content,
		&status,
		&imageURL,
		&fv.CreatedAt,
	); err != nil {
		return nil, err
	}

	fv.Status = domain.ViewingStatus(status)
	if imageURL.Valid {
		url := imageURL.String
		fv.ImageURL = &url
	}
	return &fv, nil
}
