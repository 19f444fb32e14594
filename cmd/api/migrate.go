package main

import (
	"github.com/spf13/cobra"

	"github.com/roguepikachu/roster/internal/config"
	"github.com/roguepikachu/roster/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the student tables for the configured SQL backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.InitLogging(cfg.LogLevel, cfg.LogFormat)

		a, err := openStorage(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		migrated, err := a.migrate(ctx)
		if err != nil {
			return err
		}
		if !migrated {
			logger.Info(ctx, "backend %s has no schema to migrate", cfg.StorageBackend)
			return nil
		}
		logger.Info(ctx, "schema ready for %s", cfg.StorageBackend)
		return nil
	},
}
