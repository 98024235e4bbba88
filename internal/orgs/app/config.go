package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./orgs.db)

	JWKSURL             string        // Required: identity provider JWKS endpoint
	Issuer              string        // Optional: required iss claim of access tokens
	Audience            []string      // Optional: comma separated aud values, any of which must be present
	JWKSRefreshInterval time.Duration // Optional: how often the JWKS is re-fetched (default: 15m)

	TokenKeyPath     string        // Optional: key file sealing invitation tokens at rest (ephemeral if unset)
	EventWebhookURL  string        // Optional: where outbox events are delivered (disabled if unset)
	DispatchInterval time.Duration // Optional: outbox polling interval (default: 10s)
	InviteBaseURL    string        // Optional: accept links are InviteBaseURL/{token}

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	MetricsPrefix       string        // Prometheus metric name prefix (default: orgs)
}

// LoadEnvFile preloads environment variables from a dotenv file. Variables
// already set in the environment win. With an empty path ./.env is used if
// it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func LoadConfig() Config {
	port := getEnvIntOrDefault("PORT", 8080)

	return Config{
		DatabaseFile: getEnvOrDefault("ORGS_DATABASE_FILE", "orgs.db"),

		JWKSURL:             os.Getenv("ORGS_IDP_JWKS_URL"),
		Issuer:              os.Getenv("ORGS_IDP_ISSUER"),
		Audience:            splitList(os.Getenv("ORGS_IDP_AUDIENCE")),
		JWKSRefreshInterval: getEnvDurationOrDefault("ORGS_JWKS_REFRESH_INTERVAL", 15*time.Minute),

		TokenKeyPath:     os.Getenv("ORGS_TOKEN_KEY_PATH"),
		EventWebhookURL:  os.Getenv("ORGS_EVENT_WEBHOOK_URL"),
		DispatchInterval: getEnvDurationOrDefault("ORGS_DISPATCH_INTERVAL", 10*time.Second),
		InviteBaseURL: getEnvOrDefault(
			"ORGS_INVITE_BASE_URL",
			fmt.Sprintf("http://localhost:%d/invite", port),
		),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                port,
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		MetricsPrefix:       getEnvOrDefault("METRICS_PREFIX", "orgs"),
	}
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	if c.JWKSURL == "" {
		return errors.New("ORGS_IDP_JWKS_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
