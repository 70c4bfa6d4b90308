package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMongoDB   = "mongodb"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Firestore FirestoreConfig
	Presence  PresenceConfig
	Auth      AuthConfig
	Scheduler SchedulerConfig
	Sheets    SheetsConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// FirestoreConfig holds settings for Cloud Firestore.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsPath string
}

// PresenceConfig controls when a vendor counts as online.
type PresenceConfig struct {
	Threshold time.Duration
}

// AuthConfig holds admin credentials, the device key and session lifetime.
type AuthConfig struct {
	AdminUsername     string
	AdminPasswordHash string
	DeviceKey         string
	SessionTTL        time.Duration
}

// SchedulerConfig holds cron specs for background jobs.
type SchedulerConfig struct {
	SessionSweepSchedule string
	ReportSchedule       string
	Timezone             string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	StockRange      string
}

// Enabled reports whether the stock report export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// LogConfig holds logger options.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	shutdown, err := getDurationWithDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	threshold, err := getDurationWithDefault("PRESENCE_THRESHOLD", 5*time.Second)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getDurationWithDefault("SESSION_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getenvWithDefault("APP_PORT", "8080"),
			ShutdownTimeout: shutdown,
		},
		Store: StoreConfig{
			Backend: getenvWithDefault("STORE_BACKEND", BackendMongoDB),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "fishtrace"),
		},
		Firestore: FirestoreConfig{
			ProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
			CredentialsPath: os.Getenv("FIRESTORE_CREDENTIALS_PATH"),
		},
		Presence: PresenceConfig{
			Threshold: threshold,
		},
		Auth: AuthConfig{
			AdminUsername:     os.Getenv("ADMIN_USERNAME"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			DeviceKey:         os.Getenv("DEVICE_API_KEY"),
			SessionTTL:        sessionTTL,
		},
		Scheduler: SchedulerConfig{
			SessionSweepSchedule: getenvWithDefault("SESSION_SWEEP_SCHEDULE", "@every 1m"),
			ReportSchedule:       getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:             getenvWithDefault("TIMEZONE", "Africa/Conakry"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			StockRange:      getenvWithDefault("STOCK_REPORT_RANGE", "Stock!A:H"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided")
		}
	case BackendFirestore:
		if c.Firestore.ProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID must be provided")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	if c.Presence.Threshold <= 0 {
		return errors.New("PRESENCE_THRESHOLD must be positive")
	}

	switch {
	case c.Auth.AdminUsername == "":
		return errors.New("ADMIN_USERNAME must be provided")
	case c.Auth.AdminPasswordHash == "":
		return errors.New("ADMIN_PASSWORD_HASH must be provided")
	case c.Auth.DeviceKey == "":
		return errors.New("DEVICE_API_KEY must be provided")
	case c.Auth.SessionTTL <= 0:
		return errors.New("SESSION_TTL must be positive")
	}

	if c.Scheduler.SessionSweepSchedule == "" {
		return errors.New("SESSION_SWEEP_SCHEDULE must be provided")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Scheduler.Timezone, err)
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}
	if c.Sheets.Enabled() && c.Scheduler.ReportSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationWithDefault(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
