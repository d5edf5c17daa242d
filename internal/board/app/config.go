package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	TokenSecret string // Required: HMAC secret for signing tokens
	Issuer      string // Optional: issuer claim for tokens (default: uplist)
	Audience    string // Optional: audience claim for tokens (default: uplist-api)

	DatabaseFile string // Optional: path to SQLite database file (default: ./uplist.db)
	CookieDomain string // Optional: cookie Domain attribute, set in prod only

	BootstrapEmail    string // Optional: first admin email, created only on an empty store
	BootstrapPassword string // Optional: first admin password
	BootstrapName     string // Optional: first admin display name

	Env                  string        // Environment (dev, test, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Sweep interval for revocations and lockouts (default: 1h)
}

func LoadConfig() Config {
	return Config{
		TokenSecret:          os.Getenv("UPLIST_TOKEN_SECRET"),
		Issuer:               getEnvOrDefault("UPLIST_ISSUER", "uplist"),
		Audience:             getEnvOrDefault("UPLIST_AUDIENCE", "uplist-api"),
		DatabaseFile:         getEnvOrDefault("UPLIST_DATABASE_FILE", "uplist.db"),
		CookieDomain:         os.Getenv("UPLIST_COOKIE_DOMAIN"),
		BootstrapEmail:       os.Getenv("UPLIST_BOOTSTRAP_EMAIL"),
		BootstrapPassword:    os.Getenv("UPLIST_BOOTSTRAP_PASSWORD"),
		BootstrapName:        getEnvOrDefault("UPLIST_BOOTSTRAP_NAME", "Administrator"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
