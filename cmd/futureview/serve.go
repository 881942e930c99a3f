package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/platform/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var migrateOnServe bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the generation worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		log, err := logger.Setup(cfg.Server)
		if err != nil {
			return fmt.Errorf("setting up logger: %w", err)
		}
		log.Info("server configuration loaded",
			slog.Int("port", cfg.Server.Port),
			slog.String("log_level", cfg.Server.LogLevel))

		ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		db, err := openDatabase(ctx, cfg.Database, log)
		if err != nil {
			return err
		}

		if migrateOnServe {
			if err := postgres.Migrate(ctx, db, "up", log); err != nil {
				_ = db.Close()
				return err
			}
		}

		generator, err := buildGenerator(ctx, cfg, log)
		if err != nil {
			_ = db.Close()
			return err
		}
		artifacts, err := buildArtifactStore(ctx, cfg.Artifacts, log)
		if err != nil {
			_ = db.Close()
			return err
		}

		app, err := newApplication(cfg, log, db, generator, artifacts, prometheus.DefaultRegisterer)
		if err != nil {
			_ = db.Close()
			return err
		}
		defer app.close()

		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
		if err != nil {
			return fmt.Errorf("creating listener: %w", err)
		}

		return app.Run(ctx, listener)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnServe, "migrate", false, "Apply pending migrations before serving")
}

// commandContext falls back to a background context for commands executed
// without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
