package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName    string
	AppVersion string
	HTTPAddr   string
	LogLevel   string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	SMTP SMTPConfig

	// Tax authority endpoints (reception/authorization web services).
	AuthorityReceptionURL     string
	AuthorityAuthorizationURL string
	AuthorityTimeout          time.Duration

	// Entitlement server for subscription validation.
	EntitlementURL    string
	EntitlementAPIKey string

	// Number of invoices allowed before a subscription is required.
	FreeInvoiceAllowance int64

	SchedulerInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Module provides application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:    getenv("APP_SERVICE", "clouget-pos"),
		AppVersion: getenv("APP_VERSION", "0.1.0"),
		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "clouget"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 3600)),

		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", ""),
			Port:     int(getenvInt64("SMTP_PORT", 587)),
			Username: getenv("SMTP_USERNAME", ""),
			Password: getenv("SMTP_PASSWORD", ""),
			From:     getenv("SMTP_FROM", ""),
		},

		AuthorityReceptionURL:     getenv("AUTHORITY_RECEPTION_URL", ""),
		AuthorityAuthorizationURL: getenv("AUTHORITY_AUTHORIZATION_URL", ""),
		AuthorityTimeout:          getenvDuration("AUTHORITY_TIMEOUT", 30*time.Second),

		EntitlementURL:    getenv("ENTITLEMENT_URL", ""),
		EntitlementAPIKey: getenv("ENTITLEMENT_API_KEY", ""),

		FreeInvoiceAllowance: getenvInt64("FREE_INVOICE_ALLOWANCE", 10),

		SchedulerInterval: getenvDuration("SCHEDULER_INTERVAL", time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
