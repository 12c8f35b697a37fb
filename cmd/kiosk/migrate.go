package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Spok95/material-kiosk/internal/config"
	"github.com/Spok95/material-kiosk/internal/infra/db"
	"github.com/Spok95/material-kiosk/internal/infra/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage.Driver != config.DriverPostgres {
			return errors.New("migrate needs the postgres storage driver")
		}
		return db.Migrate(cfg.Postgres.DSN, logger.New(cfg.App.Env, cfg.Log.Format))
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
