package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	TelemetryPostgres  = "postgres"
	TelemetryFirestore = "firestore"

	// DefaultApplicationID is the tenant key used when a user record has none.
	DefaultApplicationID = "default-app"
)

type Config struct {
	Port           string
	DatabaseURL    string
	DatabaseDriver string
	JWTSecret      string

	DefaultApplicationID string
	AlertInterval        time.Duration
	TelemetryBackend     string

	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string
	FirebaseProjectID         string

	LogLevel  string
	LogFormat string

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️  .env file not found, using environment variables from system")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                      getEnv("PORT", "8080"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		DatabaseDriver:            getEnv("DATABASE_DRIVER", "postgres"),
		JWTSecret:                 os.Getenv("APP_JWT_SECRET"),
		DefaultApplicationID:      getEnv("DEFAULT_APPLICATION_ID", DefaultApplicationID),
		TelemetryBackend:          strings.ToLower(getEnv("TELEMETRY_BACKEND", TelemetryPostgres)),
		FirebaseCredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile:   getEnv("FIREBASE_CREDENTIALS_FILE", "./firebase-service-account.json"),
		FirebaseProjectID:         os.Getenv("FIREBASE_PROJECT_ID"),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		LogFormat:                 getEnv("LOG_FORMAT", "text"),
		AdminEmail:                os.Getenv("ADMIN_EMAIL"),
		AdminPassword:             os.Getenv("ADMIN_PASSWORD"),
	}

	interval, err := time.ParseDuration(getEnv("ALERT_INTERVAL", "5m"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid ALERT_INTERVAL")
	}
	if interval <= 0 {
		return nil, errors.New("ALERT_INTERVAL must be positive")
	}
	cfg.AlertInterval = interval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if c.JWTSecret == "" {
		return errors.New("APP_JWT_SECRET environment variable is required")
	}
	switch c.TelemetryBackend {
	case TelemetryPostgres, TelemetryFirestore:
	default:
		return errors.Errorf("unknown TELEMETRY_BACKEND %q", c.TelemetryBackend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
