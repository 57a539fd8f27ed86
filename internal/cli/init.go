// Package cli holds the start-up wiring shared by the binaries under cmd/.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/config"
	applog "spendwise/internal/log"
	"spendwise/internal/report"
	"spendwise/internal/services"
	"spendwise/internal/sheets"
	gsheet "spendwise/internal/sheets/google"
	"spendwise/internal/sheets/memory"
	"spendwise/internal/storage"
)

// cacheEntries bounds the shared read-through cache.
const cacheEntries = 1000

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:  applog.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// It exits the process on validation failure.
func LoadAndValidateConfig() *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository, applying migrations, or exits.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// NewNotifier builds the notifier selected by NOTIFY_TRANSPORT.
func NewNotifier(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*backend.NotifierResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.WithComponent(applog.ComponentNotifier).Logger).CreateNotifier(ctx, bc)
}

// NewReportPublisher returns the Google Sheets publisher when a
// spreadsheet is configured, and the in-memory one otherwise.
func NewReportPublisher(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.ReportPublisher, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled, sheets reports are kept in memory")
		return memory.New(), nil
	}
	p, err := gsheet.NewPublisher(ctx, cfg.GoogleSpreadsheetID)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets publisher initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return p, nil
}

// Services is the application layer built over one repository.
type Services struct {
	Cache      *cache.Store
	Users      *services.UserService
	Categories *services.CategoryService
	Expenses   *services.ExpenseService
	Imports    *services.ImportService
	Analytics  *services.AnalyticsService
	Reports    *services.ReportService
	Alerts     *services.AlertService
}

func NewServices(repo *storage.SQLiteRepository, notifier services.Notifier) *Services {
	c := cache.NewStore(cacheEntries)
	return &Services{
		Cache:      c,
		Users:      services.NewUserService(repo),
		Categories: services.NewCategoryService(repo, repo, c),
		Expenses:   services.NewExpenseService(repo, repo),
		Imports:    services.NewImportService(repo, repo, repo, c),
		Analytics:  services.NewAnalyticsService(repo, c),
		Reports:    services.NewReportService(repo, repo, repo, report.NewExcelRenderer(), notifier),
		Alerts:     services.NewAlertService(repo),
	}
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
