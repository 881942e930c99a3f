package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/phrazzld/futureview-api/internal/api"
	"github.com/phrazzld/futureview-api/internal/artifact"
	"github.com/phrazzld/futureview-api/internal/config"
	"github.com/phrazzld/futureview-api/internal/generation"
	"github.com/phrazzld/futureview-api/internal/platform/gemini"
	"github.com/phrazzld/futureview-api/internal/platform/minio"
	"github.com/phrazzld/futureview-api/internal/platform/postgres"
	"github.com/phrazzld/futureview-api/internal/service"
	"github.com/phrazzld/futureview-api/internal/service/recency"
	"github.com/phrazzld/futureview-api/internal/store"
	"github.com/phrazzld/futureview-api/internal/task"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const readHeaderTimeout = 10 * time.Second

// application holds the wired components of a running server so they can be
// started and shut down together.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	queue   *task.Queue
	worker  *task.Worker
	sweeper *artifact.Sweeper
	handler http.Handler
}

// newApplication wires stores, services, the worker and the router around an
// open database. The generator and artifact store are passed in so the
// provider connections are made by the caller.
func newApplication(
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
	generator generation.Generator,
	artifacts artifact.Store,
	registerer prometheus.Registerer,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
		queue:  task.NewQueue(),
	}

	viewingStore := postgres.NewPostgresFutureViewingStore(db, log)
	screenStore := postgres.NewPostgresScreenStore(db, log)
	transactor := store.NewDBTransactor(db)

	var err error
	app.worker, err = task.NewWorker(
		app.queue,
		viewingStore,
		generator,
		artifacts,
		task.NewWorkerConfig(cfg.Worker),
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	enqueuer, err := task.NewEnqueuer(app.queue, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create enqueuer: %w", err)
	}

	selector := recency.NewSelector(viewingStore, screenStore, transactor, log)

	viewingService, err := service.NewFutureViewingService(viewingStore, transactor, enqueuer, selector, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create future viewing service: %w", err)
	}
	screenService, err := service.NewScreenService(screenStore, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create screen service: %w", err)
	}

	if cfg.Sweep.Enabled && cfg.Artifacts.Backend == "local" {
		app.sweeper = artifact.NewSweeper(
			cfg.Artifacts.ImagesDir(),
			cfg.Sweep.MaxAgeDays,
			time.Duration(cfg.Sweep.IntervalMinutes)*time.Minute,
			log,
		)
	}

	app.handler = api.NewRouter(api.RouterConfig{
		Viewings:           viewingService,
		Screens:            screenService,
		Logger:             log,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		StaticDir:          cfg.Artifacts.StaticDir,
		HealthCheck: func(r *http.Request) error {
			return db.PingContext(r.Context())
		},
		MetricsRegisterer: registerer,
	})

	log.Info("application initialized",
		slog.String("artifact_backend", cfg.Artifacts.Backend),
		slog.Bool("sweep_enabled", app.sweeper != nil))
	return app, nil
}

// buildGenerator creates the image generation provider client.
func buildGenerator(ctx context.Context, cfg *config.Config, log *slog.Logger) (generation.Generator, error) {
	gen, err := gemini.NewImageGenerator(ctx, log.With(slog.String("component", "image_generator")), cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image generator: %w", err)
	}
	return gen, nil
}

// buildArtifactStore selects the configured artifact backend.
func buildArtifactStore(ctx context.Context, cfg config.ArtifactsConfig, log *slog.Logger) (artifact.Store, error) {
	switch cfg.Backend {
	case "minio":
		s, err := minio.NewStore(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio artifact store: %w", err)
		}
		return s, nil
	case "local", "":
		return artifact.NewLocalStore(cfg.ImagesDir(), cfg.URLPrefix, log), nil
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
}

// Run serves HTTP on listener and runs the worker and sweeper until ctx is
// canceled or one of them fails. The listener is closed on return.
func (app *application) Run(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("starting server", slog.String("address", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return app.worker.Run(gctx)
	})

	if app.sweeper != nil {
		g.Go(func() error {
			return app.sweeper.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutting down server")

		timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		// No submissions can arrive after the server has stopped.
		app.queue.Close()
		if err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	app.logger.Info("server shutdown completed")
	return err
}

// close releases the database handle.
func (app *application) close() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
}
