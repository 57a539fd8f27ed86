package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/config"
	applog "spendwise/internal/log"
	"spendwise/internal/storage"
)

var flagDBPath string

var rootCmd = &cobra.Command{
	Use:           "spendwisectl",
	Short:         "Spendwise administration",
	Long:          "Run migrations, background job cycles, reports and imports against the spendwise database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func execute() {
	ctx, stop := cli.SignalContext()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")
}

// env is what a command needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	logger *applog.Logger
	repo   *storage.SQLiteRepository
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if flagDBPath != "" {
		cfg.SQLiteDBPath = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg)
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, repo: repo}, nil
}

func (e *env) Close() {
	e.repo.Close()
}

func (e *env) notifier(ctx context.Context) (*backend.NotifierResult, error) {
	return cli.NewNotifier(ctx, e.cfg, e.logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
