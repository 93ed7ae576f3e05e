// Package cli implements moviectl, the command-line front end to the same
// load and export operations the HTTP server offers.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/movieloader/internal/config"
	"github.com/JonMunkholm/movieloader/internal/core"
	_ "github.com/JonMunkholm/movieloader/internal/core/profiles" // Register column profiles
	"github.com/JonMunkholm/movieloader/internal/database"
	"github.com/JonMunkholm/movieloader/internal/logging"
)

// RootOptions holds global flags and the configuration loaded for every
// subcommand.
type RootOptions struct {
	EnvFile     string
	DatabaseURL string
	LogLevel    string

	cfg *config.Config
}

// NewRootCommand creates the moviectl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "moviectl",
		Short:         "Load and export the movie catalog",
		Long:          "moviectl loads CSV or XLSX movie files into the catalog database and exports it back as CSV.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "load environment variables from this file before reading config")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "database URL (overrides DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// setup reads configuration and routes logs to stderr, keeping stdout
// free for CSV output.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	// Flags win over the environment; the config loader only reads env vars.
	for key, val := range map[string]string{
		"DATABASE_URL": o.DatabaseURL,
		"LOG_LEVEL":    o.LogLevel,
	} {
		if val == "" {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	o.cfg = cfg

	slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))
	return nil
}

// withService opens the store for the duration of fn.
func (o *RootOptions) withService(ctx context.Context, fn func(*core.Service) error) error {
	store, err := database.Open(ctx, o.cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	return fn(core.NewService(store, o.cfg.Ingest))
}
