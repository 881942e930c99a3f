package main

import (
	"github.com/phrazzld/futureview-api/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:           "futureview",
	Short:         "Future viewing generation service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
}

// loadConfig reads the configuration named by --config, or the environment alone.
func loadConfig() (*config.Config, error) {
	return config.LoadFile(configFile)
}
