package artifact

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"github.com/phrazzld/futureview-api/internal/metrics"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
)

// DefaultMaxAgeDays is the sweep threshold used when none is configured.
const DefaultMaxAgeDays = 14

const day = 24 * time.Hour

// SweepResult reports the outcome of one sweep.
type SweepResult struct {
	Deleted int
	Errors  int
}

// Sweep deletes regular files in dir whose age in whole days is greater than
// maxAgeDays. A missing directory is not an error and yields a zero result.
// Subdirectories are left alone. The job store is never consulted.
func Sweep(ctx context.Context, dir string, maxAgeDays int) SweepResult {
	return sweep(ctx, dir, maxAgeDays, time.Now())
}

func sweep(ctx context.Context, dir string, maxAgeDays int, now time.Time) SweepResult {
	log := logger.FromContext(ctx).With(
		slog.String("component", "artifact_sweep"),
		slog.String("dir", dir))

	var result SweepResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("artifact directory does not exist, nothing to sweep")
			return result
		}
		log.Error("failed to read artifact directory", slog.String("error", err.Error()))
		result.Errors++
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.Type().IsRegular() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Error("failed to stat artifact", slog.String("path", path), slog.String("error", err.Error()))
				result.Errors++
			}
			continue
		}

		ageDays := int(now.Sub(info.ModTime()) / day)
		if ageDays <= maxAgeDays {
			continue
		}

		if err := os.Remove(path); err != nil {
			log.Error("failed to delete artifact", slog.String("path", path), slog.String("error", err.Error()))
			result.Errors++
			continue
		}
		log.Debug("deleted artifact", slog.String("path", path), slog.Int("age_days", ageDays))
		result.Deleted++
	}

	log.Info("artifact sweep finished",
		slog.Int("deleted", result.Deleted),
		slog.Int("errors", result.Errors),
		slog.Int("max_age_days", maxAgeDays))
	return result
}

// Sweeper runs Sweep periodically.
type Sweeper struct {
	dir        string
	maxAgeDays int
	interval   time.Duration
	logger     *slog.Logger
}

// NewSweeper creates a sweeper for dir. A non-positive interval defaults to a day.
func NewSweeper(dir string, maxAgeDays int, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = day
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		dir:        dir,
		maxAgeDays: maxAgeDays,
		interval:   interval,
		logger:     log.With(slog.String("component", "artifact_sweeper")),
	}
}

// Run sweeps once immediately and then on a jittered ticker until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ctx = logger.WithLogger(ctx, s.logger)
	s.runOnce(ctx)

	ticker := jitterbug.New(s.interval, &jitterbug.Norm{Stdev: s.interval / 20, Mean: 0})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("artifact sweeper stopped")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	result := Sweep(ctx, s.dir, s.maxAgeDays)
	metrics.AddSwept(result.Deleted, result.Errors)
}
