package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskflow-dev/taskflow/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()
		gdb := openDatabase(conf)

		if err := db.MigrateDatabase(gdb); err != nil {
			slog.Error("Failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}

		slog.Info("Database migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
