package cmd

import (
	"fmt"

	"github.com/habitedge/habitedge/internal/config"
	"github.com/habitedge/habitedge/internal/db"
	"github.com/habitedge/habitedge/internal/logger"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
	}

	// Pending migrations apply on server boot, so "up" needs no verb.
	// Rolling back opens the database directly: app.New would first
	// re-apply the migration being rolled back.
	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

			database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.MigrateDown(database.DB, cfg.DBDriver); err != nil {
				return err
			}
			fmt.Println("rolled back one migration")
			return nil
		},
	})

	return migrate
}
