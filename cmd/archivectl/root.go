package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mediaarchive/internal/app"
)

var version = "dev"

var (
	logLevel   string
	logFormat  string
	envFile    string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "archivectl",
	Short: "Manage the media archive catalog",
	Long: `archivectl - maintenance tool for the media archive

Parses release names, ingests links through the metadata pipeline,
imports and purges catalog documents, and manages the pixeldrain
account the catalog links to.

Configuration is read from the environment (see .env).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return app.LoadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json); defaults to LOG_FORMAT")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("archivectl {{.Version}}\n")
}

// loadConfig applies the persistent logging flags over the environment.
// Logs go to stderr so command output stays parseable.
func loadConfig(cmd *cobra.Command) (app.Config, *slog.Logger) {
	cfg := app.LoadConfig()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, app.NewLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}

// openRuntime connects storage; callers must Close the runtime.
func openRuntime(cmd *cobra.Command) (*app.Runtime, error) {
	cfg, logger := loadConfig(cmd)
	rt, err := app.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}
	return rt, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
