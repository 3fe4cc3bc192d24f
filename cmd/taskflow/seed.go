package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskflow-dev/taskflow/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with a demo dataset",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig()
		gdb := openDatabase(conf)

		if err := db.MigrateDatabase(gdb); err != nil {
			slog.Error("Failed to migrate database", slog.Any("error", err))
			os.Exit(1)
		}

		if err := db.Seed(cmd.Context(), gdb); err != nil {
			slog.Error("Failed to seed database", slog.Any("error", err))
			os.Exit(1)
		}

		slog.Info("Database seeded", slog.String("admin", "admin@example.com"), slog.String("user", "user@example.com"))
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
