package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/taskflow-dev/taskflow/db"
	"github.com/taskflow-dev/taskflow/internal/config"
	"github.com/taskflow-dev/taskflow/internal/logging"
	"gorm.io/gorm"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "taskflow",
	Short: "Project and task management API",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil {
			log.Println("Error loading .env file, skipping")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}

// loadConfig reads the configuration and installs the process logger.
func loadConfig() *config.Config {
	conf, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := conf.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	slog.SetDefault(logging.New(os.Stdout, conf.LogLevel, conf.LogFormat))

	return conf
}

func openDatabase(conf *config.Config) *gorm.DB {
	gdb, err := db.ConnectDatabase(conf.DBDriver, conf.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	return gdb
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file")
}
