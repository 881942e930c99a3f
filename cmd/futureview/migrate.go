package main

import (
	"fmt"

	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/phrazzld/futureview-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

var migrateCommands = []string{"up", "down", "reset", "status", "version"}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|reset|status|version]",
	Short:     "Migrate the db",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: migrateCommands,
	RunE: func(cmd *cobra.Command, args []string) error {
		command := "up"
		if len(args) == 1 {
			command = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		log, err := logger.Setup(cfg.Server)
		if err != nil {
			return fmt.Errorf("setting up logger: %w", err)
		}

		ctx := commandContext(cmd)
		db, err := openDatabase(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		return postgres.Migrate(ctx, db, command, log)
	},
}
