package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/metrics"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
)

// Enqueuer is the producer side of the queue. Callers must only enqueue a
// viewing after the transaction that created it as PENDING has committed.
type Enqueuer struct {
	queue  *Queue
	logger *slog.Logger
	now    func() time.Time
}

// NewEnqueuer creates an Enqueuer pushing onto queue.
func NewEnqueuer(queue *Queue, log *slog.Logger) (*Enqueuer, error) {
	if queue == nil {
		return nil, ErrNilQueue
	}
	if log == nil {
		return nil, ErrNilLogger
	}
	return &Enqueuer{
		queue:  queue,
		logger: log.With(slog.String("component", "enqueuer")),
		now:    time.Now,
	}, nil
}

// Enqueue makes the viewing eligible for processing.
func (e *Enqueuer) Enqueue(ctx context.Context, viewingID uuid.UUID, params domain.GenerationParams) error {
	if viewingID == uuid.Nil {
		return ErrNilViewingID
	}

	err := e.queue.Push(Descriptor{
		ViewingID:  viewingID,
		Params:     params,
		EnqueuedAt: e.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue viewing %s: %w", viewingID, err)
	}

	depth := e.queue.Len()
	metrics.SetQueueDepth(depth)
	logger.FromContextOrDefault(ctx, e.logger).Debug("viewing enqueued",
		slog.String("viewing_id", viewingID.String()),
		slog.Int("queue_len", depth))
	return nil
}
