package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	version, err := storage.RunMigrations(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	fmt.Printf("database %s at schema version %d\n", cfg.SQLiteDBPath, version)
	return nil
}
