package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Notification transports.
const (
	TransportSMTP = "smtp"
	TransportAMQP = "amqp"
	TransportLog  = "log"
)

type Config struct {
	// HTTP Server
	Port               string
	AppEnv             string
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string

	// Storage
	SQLiteDBPath string
	ReportsDir   string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Notifications
	NotifyTransport string
	SMTP            SMTPConfig

	// Budget alert sweeper
	AlertSweepInterval    time.Duration
	AlertThresholdPercent decimal.Decimal

	// Report job processor
	ReportPollInterval time.Duration
	ReportBatchSize    int

	// Monthly email job
	MonthlyEmailSchedule string
	MonthlyEmailThrottle time.Duration

	// Google Sheets publishing, disabled when the spreadsheet id is empty
	GoogleSpreadsheetID string
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromEmail   string
	FromName    string
	ImplicitTLS bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8081"),
		AppEnv:             getEnv("APP_ENV", "production"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendwise.db"),
		ReportsDir:   getEnv("REPORTS_DIR", "./data/reports"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendwise"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		NotifyTransport: strings.ToLower(getEnv("NOTIFY_TRANSPORT", TransportLog)),
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromEmail:   getEnv("SMTP_FROM_EMAIL", ""),
			FromName:    getEnv("SMTP_FROM_NAME", "Expense Tracker"),
			ImplicitTLS: getEnvBool("SMTP_IMPLICIT_TLS", false),
		},

		AlertSweepInterval:    getEnvDuration("ALERT_SWEEP_INTERVAL", 6*time.Hour),
		AlertThresholdPercent: getEnvDecimal("ALERT_THRESHOLD_PERCENT", decimal.NewFromInt(80)),

		ReportPollInterval: getEnvDuration("REPORT_POLL_INTERVAL", 30*time.Second),
		ReportBatchSize:    getEnvInt("REPORT_BATCH_SIZE", 10),

		MonthlyEmailSchedule: getEnv("MONTHLY_EMAIL_SCHEDULE", "0 9 1 * *"),
		MonthlyEmailThrottle: getEnvDuration("MONTHLY_EMAIL_THROTTLE", 2*time.Second),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
	}
}

// IsDevelopment reports whether error details may be shown to callers.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if msg := ensureDir(filepath.Dir(c.SQLiteDBPath)); msg != "" {
		errors = append(errors, "cannot create SQLite database directory "+msg)
	}

	if c.ReportsDir == "" {
		errors = append(errors, "reports directory cannot be empty")
	} else if msg := ensureDir(c.ReportsDir); msg != "" {
		errors = append(errors, "cannot create reports directory "+msg)
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.NotifyTransport {
	case TransportSMTP:
		if c.SMTP.Host == "" {
			errors = append(errors, "SMTP host is required when using smtp transport")
		}
		if c.SMTP.FromEmail == "" {
			errors = append(errors, "SMTP from address is required when using smtp transport")
		}
		if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid SMTP port %d: must be between 1 and 65535", c.SMTP.Port))
		}
	case TransportAMQP:
		if c.AMQPURL == "" {
			errors = append(errors, "AMQP URL is required when using amqp transport")
		}
	case TransportLog:
	default:
		errors = append(errors, fmt.Sprintf("invalid notify transport '%s': must be one of [smtp amqp log]", c.NotifyTransport))
	}

	if !c.AlertThresholdPercent.IsPositive() || c.AlertThresholdPercent.GreaterThan(decimal.NewFromInt(100)) {
		errors = append(errors, fmt.Sprintf("invalid alert threshold %s: must be greater than 0 and at most 100", c.AlertThresholdPercent))
	}

	if c.AlertSweepInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid alert sweep interval %v: must be at least 1 minute", c.AlertSweepInterval))
	} else if c.AlertSweepInterval > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid alert sweep interval %v: must be at most 7 days", c.AlertSweepInterval))
	}

	if c.ReportPollInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid report poll interval %v: must be at least 1 second", c.ReportPollInterval))
	} else if c.ReportPollInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report poll interval %v: must be at most 24 hours", c.ReportPollInterval))
	}

	if c.ReportBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid report batch size %d: must be at least 1", c.ReportBatchSize))
	} else if c.ReportBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid report batch size %d: must be at most 1000", c.ReportBatchSize))
	}

	if _, err := cron.ParseStandard(c.MonthlyEmailSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid monthly email schedule '%s': %v", c.MonthlyEmailSchedule, err))
	}

	if c.MonthlyEmailThrottle < 0 {
		errors = append(errors, fmt.Sprintf("invalid monthly email throttle %v: must not be negative", c.MonthlyEmailThrottle))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir creates dir when missing and returns a description of the
// failure, or "" on success.
func ensureDir(dir string) string {
	if dir == "." || dir == "" {
		return ""
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Sprintf("'%s': %v", dir, err)
		}
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}
