package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/notebook-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down|status>",
	Short:     "Manage the database schema",
	Long:      `Apply, roll back or inspect the embedded SQL migrations for the configured database.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer db.Close()

		switch args[0] {
		case "up":
			err = database.Migrate(ctx, db)
		case "down":
			err = database.MigrateDown(ctx, db)
		default:
			err = database.MigrationStatus(ctx, db)
		}
		if err != nil {
			return err
		}
		logger.Info("migrate done", "command", args[0], "db", string(db.Dialect))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
