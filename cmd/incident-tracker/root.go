package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bissquit/incident-tracker/internal/app"
	"github.com/bissquit/incident-tracker/internal/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "incident-tracker",
		Short: "Incident Tracker - create, browse and update operational incidents",
		Long: `Incident Tracker serves a JSON API for recording operational incidents,
searching and paging through them, and updating them as they progress.

Configuration is read from defaults, an optional YAML file (--config),
INCIDENTS_* environment variables (INCIDENTS_SERVER__PORT=9000) and flags,
later sources overriding earlier ones.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file path (optional)")
	flags.String("log.level", "info", "log level (debug, info, warn, error)")
	flags.String("log.format", "json", "log format (json, text)")
	flags.String("storage.driver", config.DriverPostgres, "incident store (postgres, sqlite, memory)")
	flags.String("storage.sqlite_path", "incidents.db", "SQLite database file")
	flags.String("database.url", "", "PostgreSQL connection URL")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig builds configuration for cmd and installs the process logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(app.NewLogger(cfg.Log, os.Stderr))
	return cfg, nil
}
