package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/futureview-api/internal/artifact"
	"github.com/phrazzld/futureview-api/internal/config"
	"github.com/phrazzld/futureview-api/internal/domain"
	"github.com/phrazzld/futureview-api/internal/generation"
	"github.com/phrazzld/futureview-api/internal/metrics"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/store"
)

// Source is the consumer side of a queue.
type Source interface {
	Pop(ctx context.Context) (Descriptor, error)
}

// WorkerConfig tunes the worker's failure handling.
type WorkerConfig struct {
	// Backoff is how long the worker sleeps after an unexpected error.
	Backoff time.Duration

	// VisibilityRetries is how many times the worker looks a viewing up
	// before giving up on a not-found result.
	VisibilityRetries int

	// VisibilityRetryDelay separates those lookups.
	VisibilityRetryDelay time.Duration

	// FailureWriteTimeout bounds the best-effort FAILED write.
	FailureWriteTimeout time.Duration
}

// DefaultWorkerConfig returns a WorkerConfig with reasonable defaults
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Backoff:              5 * time.Second,
		VisibilityRetries:    3,
		VisibilityRetryDelay: 100 * time.Millisecond,
		FailureWriteTimeout:  10 * time.Second,
	}
}

// NewWorkerConfig converts the application configuration.
func NewWorkerConfig(cfg config.WorkerConfig) WorkerConfig {
	return WorkerConfig{
		Backoff:              time.Duration(cfg.BackoffSeconds) * time.Second,
		VisibilityRetries:    cfg.VisibilityRetries,
		VisibilityRetryDelay: time.Duration(cfg.VisibilityRetryDelayMS) * time.Millisecond,
		FailureWriteTimeout:  time.Duration(cfg.FailureWriteTimeoutSeconds) * time.Second,
	}
}

// Worker is the single consumer of the task queue. It is the only writer of
// a viewing's status and image URL.
type Worker struct {
	source    Source
	viewings  store.FutureViewingStore
	generator generation.Generator
	artifacts artifact.Store
	config    WorkerConfig
	logger    *slog.Logger

	// sleep waits for d or until ctx ends, reporting whether it waited the full duration.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewWorker creates a worker. All dependencies are required.
func NewWorker(
	source Source,
	viewings store.FutureViewingStore,
	generator generation.Generator,
	artifacts artifact.Store,
	cfg WorkerConfig,
	log *slog.Logger,
) (*Worker, error) {
	switch {
	case source == nil:
		return nil, ErrNilQueue
	case viewings == nil:
		return nil, ErrNilStore
	case generator == nil:
		return nil, ErrNilGenerator
	case artifacts == nil:
		return nil, ErrNilArtifacts
	case log == nil:
		return nil, ErrNilLogger
	}

	if cfg.VisibilityRetries <= 0 {
		cfg.VisibilityRetries = 1
	}
	if cfg.FailureWriteTimeout <= 0 {
		cfg.FailureWriteTimeout = DefaultWorkerConfig().FailureWriteTimeout
	}

	return &Worker{
		source:    source,
		viewings:  viewings,
		generator: generator,
		artifacts: artifacts,
		config:    cfg,
		logger:    log.With(slog.String("component", "worker")),
		sleep:     sleepCtx,
	}, nil
}

// Run consumes descriptors until ctx is canceled or the queue is closed and
// drained. A descriptor that has been popped is always processed to a
// terminal or stuck outcome, even if ctx is canceled meanwhile.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started")
	defer w.logger.Info("worker stopped")

	for {
		d, err := w.source.Pop(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to pop task: %w", err)
		}

		if err := w.process(context.WithoutCancel(ctx), d); err != nil {
			w.logger.Warn("backing off after unexpected error",
				slog.String("viewing_id", d.ViewingID.String()),
				slog.Duration("backoff", w.config.Backoff),
				slog.String("error", err.Error()))
			if !w.sleep(ctx, w.config.Backoff) {
				return nil
			}
		}
	}
}

// process handles one descriptor. A non-nil error means an unexpected
// failure occurred and the caller should back off.
func (w *Worker) process(ctx context.Context, d Descriptor) error {
	log := w.logger.With(slog.String("viewing_id", d.ViewingID.String()))
	ctx = logger.WithLogger(ctx, log)

	log.Debug("processing viewing", slog.Duration("queued_for", time.Since(d.EnqueuedAt)))

	fv, err := w.awaitVisible(ctx, d.ViewingID)
	if err != nil {
		return w.recoverFailure(ctx, d.ViewingID, err)
	}
	if fv.IsTerminal() {
		log.Warn("viewing already finalized, skipping",
			slog.String("status", string(fv.Status)),
			slog.String("error", ErrPersistenceConflict.Error()))
		metrics.IncreaseWorkerOutcome(metrics.OutcomeConflict)
		return nil
	}

	start := time.Now()
	data, err := w.generator.GenerateImage(ctx, d.Params)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveGeneration("error", elapsed)
		if !errors.Is(err, generation.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %v", generation.ErrProviderUnavailable, err)
		}
		return w.recoverFailure(ctx, d.ViewingID, err)
	}

	if len(data) == 0 {
		metrics.ObserveGeneration("empty", elapsed)
		log.Info("provider returned no image")
		return w.finalize(ctx, d.ViewingID, domain.ViewingStatusFailed, w.viewings.MarkFailed(ctx, d.ViewingID))
	}
	metrics.ObserveGeneration("image", elapsed)

	ref, err := w.artifacts.Save(ctx, d.ViewingID, data)
	if err != nil {
		return w.recoverFailure(ctx, d.ViewingID, fmt.Errorf("failed to save artifact: %w", err))
	}

	return w.finalize(ctx, d.ViewingID, domain.ViewingStatusCompleted, w.viewings.MarkCompleted(ctx, d.ViewingID, ref))
}

// awaitVisible loads the viewing, retrying briefly on not-found in case the
// creating transaction is not yet visible to this connection.
func (w *Worker) awaitVisible(ctx context.Context, id uuid.UUID) (*domain.FutureViewing, error) {
	var lastErr error
	for attempt := 1; attempt <= w.config.VisibilityRetries; attempt++ {
		fv, err := w.viewings.GetByID(ctx, id)
		if err == nil {
			return fv, nil
		}
		if !errors.Is(err, store.ErrFutureViewingNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
		}
		lastErr = err

		if attempt < w.config.VisibilityRetries {
			logger.FromContext(ctx).Debug("viewing not visible yet, retrying",
				slog.Int("attempt", attempt))
			w.sleep(ctx, w.config.VisibilityRetryDelay)
		}
	}
	return nil, lastErr
}

// finalize interprets the result of a terminal status write.
func (w *Worker) finalize(ctx context.Context, id uuid.UUID, status domain.ViewingStatus, err error) error {
	log := logger.FromContext(ctx)

	switch {
	case err == nil:
		log.Info("viewing finalized", slog.String("status", string(status)))
		if status == domain.ViewingStatusCompleted {
			metrics.IncreaseWorkerOutcome(metrics.OutcomeCompleted)
		} else {
			metrics.IncreaseWorkerOutcome(metrics.OutcomeFailed)
		}
		return nil
	case errors.Is(err, store.ErrAlreadyFinalized):
		log.Warn("terminal write lost to another writer",
			slog.String("status", string(status)),
			slog.String("error", fmt.Errorf("%w: %v", ErrPersistenceConflict, err).Error()))
		metrics.IncreaseWorkerOutcome(metrics.OutcomeConflict)
		return nil
	default:
		return w.recoverFailure(ctx, id, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err))
	}
}

// recoverFailure makes a best-effort FAILED write on a fresh context and
// returns cause so the worker backs off. If that write fails too the viewing
// stays PENDING and is not retried.
func (w *Worker) recoverFailure(ctx context.Context, id uuid.UUID, cause error) error {
	log := logger.FromContext(ctx)
	log.Error("viewing processing failed", slog.String("error", cause.Error()))

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.FailureWriteTimeout)
	defer cancel()

	err := w.viewings.MarkFailed(writeCtx, id)
	switch {
	case err == nil:
		log.Info("viewing marked failed", slog.String("status", string(domain.ViewingStatusFailed)))
		metrics.IncreaseWorkerOutcome(metrics.OutcomeFailed)
	case errors.Is(err, store.ErrAlreadyFinalized):
		log.Warn("viewing already finalized, failure not recorded",
			slog.String("error", ErrPersistenceConflict.Error()))
		metrics.IncreaseWorkerOutcome(metrics.OutcomeConflict)
	case errors.Is(err, store.ErrFutureViewingNotFound):
		log.Error("viewing does not exist, dropping descriptor")
		metrics.IncreaseWorkerOutcome(metrics.OutcomeMissing)
	default:
		log.Error("failed to mark viewing failed, viewing left pending",
			slog.Bool("stuck", true),
			slog.String("error", fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err).Error()),
			slog.String("cause", cause.Error()))
		metrics.IncreaseWorkerOutcome(metrics.OutcomeStuck)
	}
	return cause
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
