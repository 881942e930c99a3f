// Package recency selects recent completed viewings a screen has not been
// shown yet and records that the screen has now seen them.
package recency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/metrics"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/store"
)

const (
	// Window bounds how old a completed viewing may be and still be shown.
	Window = 24 * time.Hour

	// DefaultPageSize is used when the caller passes a non-positive page size.
	DefaultPageSize = 20
)

var (
	// ErrInvalidScreenReference is returned for a malformed screen ID. No
	// query is executed.
	ErrInvalidScreenReference = errors.New("invalid screen reference")

	// ErrConcurrentMarkConflict is returned when another selection for the
	// same screen recorded one of the selected viewings first. Nothing was
	// recorded and the caller may retry.
	ErrConcurrentMarkConflict = errors.New("concurrent selection marked the same viewing")
)

// Selector implements select-and-mark for screens.
type Selector struct {
	viewings   store.FutureViewingStore
	screens    store.ScreenStore
	transactor store.Transactor
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Selector.
type Option func(*Selector)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		s.now = now
	}
}

// NewSelector creates a Selector.
func NewSelector(
	viewings store.FutureViewingStore,
	screens store.ScreenStore,
	transactor store.Transactor,
	log *slog.Logger,
	opts ...Option,
) *Selector {
	if log == nil {
		log = slog.Default()
	}
	s := &Selector{
		viewings:   viewings,
		screens:    screens,
		transactor: transactor,
		logger:     log.With(slog.String("component", "recency_selector")),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectAndMark returns up to pageSize COMPLETED viewings from the last 24
// hours that screenID has not seen, and records them as seen in one batch.
//
// Selection is newest first but the returned page is ordered oldest first.
// Because the returned viewings become ineligible, asking for the same page
// again yields the next unseen items. An empty selection writes nothing.
func (s *Selector) SelectAndMark(
	ctx context.Context,
	screenID string,
	page, pageSize int,
) ([]*domain.FutureViewing, error) {
	id, err := uuid.Parse(screenID)
	if err != nil || id == uuid.Nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScreenReference, screenID)
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("screen_id", id.String()))

	if _, err := s.screens.GetByID(ctx, id); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	selected, err := s.viewings.FindUnseenCompleted(ctx, id, now.Add(-Window), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to find unseen viewings: %w", err)
	}
	if len(selected) == 0 {
		log.Debug("no unseen viewings")
		return selected, nil
	}

	ids := make([]uuid.UUID, len(selected))
	for i, fv := range selected {
		ids[i] = fv.ID
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.screens.WithTx(tx).RecordViewings(ctx, id, ids, now)
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			metrics.IncreaseMarkConflict()
			log.Warn("selection lost a race with a concurrent selection",
				slog.Int("selected", len(ids)))
			return nil, fmt.Errorf("%w: %v", ErrConcurrentMarkConflict, err)
		}
		return nil, fmt.Errorf("failed to record viewings: %w", err)
	}

	metrics.AddMarked(len(ids))
	log.Debug("viewings selected and marked", slog.Int("count", len(ids)), slog.Int("page", page))

	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}
	return selected, nil
}
