package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	auth "github.com/goliatone/go-authsvc"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the authsvc CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "authsvc",
		Short:         "Credential issuance service",
		Long:          `authsvc registers accounts, checks credentials and issues signed session cookies.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (YAML)")
	flags.String("addr", ":3000", "listen address")
	flags.String("env", "", "environment: production, development or test")
	flags.String("mount-path", "/api/users", "mount point of the user routes")
	flags.String("db-driver", auth.DriverSQLite, "database driver: sqlite or postgres")
	flags.String("db-dsn", "", "database connection string")
	flags.Int("ping-retries", 5, "database ping attempts at startup")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "text", "log format: text or json")
	flags.Int("hash-cost", 0, "password hash cost, 0 selects the default")
	flags.Bool("use-hashid", false, "derive account IDs from the email")
	flags.Bool("metrics", true, "expose prometheus metrics")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig resolves the configuration and logger for cmd
func loadConfig(cmd *cobra.Command) (*auth.ServiceConfig, *slog.Logger, error) {
	cfg, err := auth.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := auth.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	return cfg, logger, nil
}
