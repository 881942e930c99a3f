package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/futureview-api/internal/artifact"
	"github.com/phrazzld/futureview-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

var (
	sweepDir  string
	sweepDays int
)

// sweepCmd runs one sweep without loading configuration, so it can be
// scheduled externally against any directory.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete generated images older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sweepDays < 0 {
			return fmt.Errorf("--days must not be negative, got %d", sweepDays)
		}

		log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil))
		ctx := logger.WithLogger(commandContext(cmd), log)
		result := artifact.Sweep(ctx, sweepDir, sweepDays)

		_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted %d files, %d errors\n", result.Deleted, result.Errors)
		return err
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepDir, "dir", "static/images", "Directory to sweep")
	sweepCmd.Flags().IntVar(&sweepDays, "days", artifact.DefaultMaxAgeDays, "Delete files older than this many days")
}
