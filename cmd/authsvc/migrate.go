package main

import (
	"github.com/spf13/cobra"

	auth "github.com/goliatone/go-authsvc"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the accounts table and its indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			hasher, err := auth.NewPasswordHasher(cfg.GetHashAlgorithm(), cfg.GetHashCost())
			if err != nil {
				return err
			}

			db, err := auth.OpenDB(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := auth.NewRepositoryManager(db, hasher)
			if err := repo.Migrate(cmd.Context()); err != nil {
				logger.Error("migration failed", "error", err)
				return err
			}

			logger.Info("migration complete", "driver", cfg.GetDriver())
			return nil
		},
	}
}
