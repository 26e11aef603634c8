package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/evidencelabs/spark/version"
)

var (
	cfgFile  string
	homeDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "spark",
	Short: "LLM-powered entity extraction for bibliographic records",
	Long: `Spark extracts structured entities from bibliographic records using an
LLM guided by a schema of labeled examples.

Given a RIS or CSV export and an extraction schema, spark produces:
  - A result table (CSV or XLSX) with one column per entity appended
    to the original record columns
  - Interactive HTML documents highlighting each extraction in the
    record it came from`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.spark/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "spark home directory (default: ~/.spark)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)

	// Set up the default logger before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)
	}

	rootCmd.AddCommand(versionCmd)
}
