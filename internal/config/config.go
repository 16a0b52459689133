package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the MCP server
type Config struct {
	// Server configuration
	Mode     string // "stdio" or "http"
	Profile  string // Profile to expose: "accounts", "all", etc.
	LogLevel string // "debug", "info", "warn", "error"

	// HTTP server configuration
	HTTPPort       int  // HTTP server port
	MetricsEnabled bool // expose /metrics in HTTP mode

	// Remote API configuration
	BaseURL  string // EDB admin API base URL
	LoginURL string // sign-in endpoint; derived from BaseURL when unset

	// Default credentials (tool arguments override these)
	UserID     string
	Password   string
	Token      string // pre-issued bearer token, skips login entirely
	ForceLogin bool

	// Request behavior
	Timeout         time.Duration
	DefaultPageSize int
	MaxPageSize     int
	MaxPages        int // aggregation page cap, 0 = unbounded
}

// Load loads configuration from environment variables.
// Priority: environment variables > .env.local > .env > defaults.
func Load() (*Config, error) {
	// godotenv never overrides variables already in the environment, so the
	// load order here sets the file precedence.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := &Config{
		Mode:     getEnv("MCP_MODE", "stdio"),
		Profile:  getEnv("MCP_PROFILE", "all"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:       getIntEnv("PORT", 8080),
		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),

		BaseURL:  strings.TrimRight(getEnv("EDB_BASE_URL", "https://api.edbintra.co.kr"), "/"),
		LoginURL: getEnv("EDB_LOGIN_URL", ""),

		UserID:     getEnv("EDB_USER_ID", ""),
		Password:   getEnv("EDB_PASSWORD", ""),
		Token:      getEnv("EDB_TOKEN", ""),
		ForceLogin: getBoolEnv("EDB_FORCE_LOGIN", false),

		Timeout:         getDurationEnv("EDB_TIMEOUT", 15*time.Second),
		DefaultPageSize: getIntEnv("DEFAULT_PAGE_SIZE", 100),
		MaxPageSize:     getIntEnv("MAX_PAGE_SIZE", 500),
		MaxPages:        getIntEnv("MAX_PAGES", 50),
	}

	if cfg.LoginURL == "" {
		cfg.LoginURL = cfg.BaseURL + "/v1/member/sign-in"
	}

	if cfg.Mode != "stdio" && cfg.Mode != "http" {
		return nil, fmt.Errorf("invalid MCP_MODE: %s (must be 'stdio' or 'http')", cfg.Mode)
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getBoolEnv gets a boolean environment variable
func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// getIntEnv gets an integer environment variable
func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	_, err := fmt.Sscanf(value, "%d", &intValue)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getDurationEnv gets a duration environment variable
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validProfiles := map[string]bool{
		"auth":      true,
		"accounts":  true,
		"pharmacy":  true,
		"campaigns": true,
		"stats":     true,
		"all":       true,
	}
	if !validProfiles[c.Profile] {
		return fmt.Errorf("invalid profile: %s", c.Profile)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.BaseURL == "" {
		return fmt.Errorf("EDB_BASE_URL must not be empty")
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE %d outside 1-%d", c.DefaultPageSize, c.MaxPageSize)
	}

	return nil
}
