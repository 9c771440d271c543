package main

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close(rt.db)

		slog.Info("migrations applied", "driver", rt.cfg.DBDriver)
		return nil
	},
}
