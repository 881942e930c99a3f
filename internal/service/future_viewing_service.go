package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/metrics"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/store"
)

const (
	// DefaultPageSize is used when a list request has no valid page size.
	DefaultPageSize = 20

	// MaxPageSize caps list requests.
	MaxPageSize = 100
)

// Enqueuer hands a committed PENDING viewing to the background worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, viewingID uuid.UUID, params domain.GenerationParams) error
}

// RecentSelector selects and marks unseen recent viewings for a screen.
type RecentSelector interface {
	SelectAndMark(ctx context.Context, screenID string, page, pageSize int) ([]*domain.FutureViewing, error)
}

// FutureViewingService provides future viewing operations
type FutureViewingService interface {
	// Submit validates the parameters, records a PENDING viewing and enqueues
	// it for generation. It returns as soon as the viewing is enqueued.
	Submit(ctx context.Context, params domain.GenerationParams) (*domain.FutureViewing, error)

	// Get returns the current state of a viewing.
	Get(ctx context.Context, id uuid.UUID) (*domain.FutureViewing, error)

	// ListAll returns viewings of every status, newest first.
	ListAll(ctx context.Context, page, pageSize int) ([]*domain.FutureViewing, error)

	// ListRecent delegates to the recency selector.
	ListRecent(ctx context.Context, screenID string, page, pageSize int) ([]*domain.FutureViewing, error)
}

type futureViewingService struct {
	viewings   store.FutureViewingStore
	transactor store.Transactor
	enqueuer   Enqueuer
	selector   RecentSelector
	logger     *slog.Logger
}

// NewFutureViewingService creates a FutureViewingService.
func NewFutureViewingService(
	viewings store.FutureViewingStore,
	transactor store.Transactor,
	enqueuer Enqueuer,
	selector RecentSelector,
	log *slog.Logger,
) (FutureViewingService, error) {
	switch {
	case viewings == nil:
		return nil, fmt.Errorf("%w: viewings store", ErrNilDependency)
	case transactor == nil:
		return nil, fmt.Errorf("%w: transactor", ErrNilDependency)
	case enqueuer == nil:
		return nil, fmt.Errorf("%w: enqueuer", ErrNilDependency)
	case selector == nil:
		return nil, fmt.Errorf("%w: selector", ErrNilDependency)
	}
	if log == nil {
		log = slog.Default()
	}
	return &futureViewingService{
		viewings:   viewings,
		transactor: transactor,
		enqueuer:   enqueuer,
		selector:   selector,
		logger:     log.With(slog.String("component", "future_viewing_service")),
	}, nil
}

// Submit implements FutureViewingService. The viewing is enqueued only after
// the transaction creating it has committed, so the worker never looks up a
// row that is not yet visible.
func (s *futureViewingService) Submit(
	ctx context.Context,
	params domain.GenerationParams,
) (*domain.FutureViewing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fv, err := domain.NewFutureViewing(params)
	if err != nil {
		log.Debug("rejected invalid submission", slog.String("error", err.Error()))
		return nil, err
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.viewings.WithTx(tx).Create(ctx, fv)
	})
	if err != nil {
		log.Error("failed to create future viewing",
			slog.String("error", err.Error()),
			slog.String("viewing_id", fv.ID.String()))
		return nil, NewServiceError("future_viewing", "submit", err)
	}

	if err := s.enqueuer.Enqueue(ctx, fv.ID, fv.Params()); err != nil {
		log.Error("failed to enqueue future viewing, it will stay pending",
			slog.String("error", err.Error()),
			slog.String("viewing_id", fv.ID.String()))
		return nil, NewServiceError("future_viewing", "enqueue", err)
	}

	metrics.IncreaseSubmitted()
	log.Info("future viewing submitted", slog.String("viewing_id", fv.ID.String()))
	return fv, nil
}

// Get implements FutureViewingService.
func (s *futureViewingService) Get(ctx context.Context, id uuid.UUID) (*domain.FutureViewing, error) {
	fv, err := s.viewings.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("future_viewing", "get", err)
	}
	return fv, nil
}

// ListAll implements FutureViewingService.
func (s *futureViewingService) ListAll(
	ctx context.Context,
	page, pageSize int,
) ([]*domain.FutureViewing, error) {
	limit, offset := Paginate(page, pageSize)
	viewings, err := s.viewings.List(ctx, limit, offset)
	if err != nil {
		return nil, NewServiceError("future_viewing", "list", err)
	}
	return viewings, nil
}

// ListRecent implements FutureViewingService. Selector sentinels are
// returned unchanged.
func (s *futureViewingService) ListRecent(
	ctx context.Context,
	screenID string,
	page, pageSize int,
) ([]*domain.FutureViewing, error) {
	viewings, err := s.selector.SelectAndMark(ctx, screenID, page, pageSize)
	if err != nil {
		return nil, NewServiceError("future_viewing", "list_recent", err)
	}
	return viewings, nil
}

// Paginate turns a 1-based page and page size into limit and offset.
// Non-positive values fall back to the first page and DefaultPageSize.
func Paginate(page, pageSize int) (limit, offset int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageSize, (page - 1) * pageSize
}
