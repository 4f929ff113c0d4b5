package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	Port           string
	AdminCode      string
	SessionSecret  string
	SessionVerify  bool
	SessionTTL     time.Duration
	CookieSecure   bool
	Location       *time.Location
	LogLevel       string
	LogFormat      string
	MQTTBrokerURL  string
	MQTTTopic      string
	MQTTClientID   string
	LoginRateLimit int
	StaticDir      string
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		StoreDriver:    DriverPostgres,
		SQLitePath:     "data/vantrack.db",
		Port:           "8080",
		SessionTTL:     24 * time.Hour,
		Location:       time.UTC,
		LogLevel:       "info",
		LogFormat:      "text",
		MQTTTopic:      "vantrack/sightings",
		MQTTClientID:   "vantrack-api",
		LoginRateLimit: 20,
	}

	if driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))); driver != "" {
		cfg.StoreDriver = driver
	}
	switch cfg.StoreDriver {
	case DriverPostgres:
		databaseURL := os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required")
		}
		if _, err := url.Parse(databaseURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		cfg.DatabaseURL = databaseURL
	case DriverSQLite:
		if p := os.Getenv("SQLITE_PATH"); p != "" {
			cfg.SQLitePath = p
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q (want postgres, sqlite or memory)", cfg.StoreDriver)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	// Load ADMIN_CODE (required)
	cfg.AdminCode = os.Getenv("ADMIN_CODE")
	if cfg.AdminCode == "" {
		return nil, fmt.Errorf("ADMIN_CODE environment variable is required")
	}

	// Load SESSION_SECRET (required)
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	cfg.SessionVerify = os.Getenv("SESSION_VERIFY") == "true"
	cfg.CookieSecure = os.Getenv("COOKIE_SECURE") == "true"

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL %q", v)
		}
		cfg.SessionTTL = ttl
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
		}
		cfg.Location = loc
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	cfg.MQTTBrokerURL = os.Getenv("MQTT_BROKER_URL")
	if v := os.Getenv("MQTT_TOPIC"); v != "" {
		cfg.MQTTTopic = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.MQTTClientID = v
	}

	cfg.StaticDir = os.Getenv("STATIC_DIR")
	cfg.TrustProxy = os.Getenv("TRUST_PROXY") == "true"

	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT %q", v)
		}
		cfg.LoginRateLimit = n
	}

	return cfg, nil
}
