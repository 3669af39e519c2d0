package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mselser95/sportsbook-boot/pkg/versioncheck"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel         string
	HTTPPort         string
	InstalledVersion string

	// Boot
	VersionSettleDelay      time.Duration
	MaintenanceCheckTimeout time.Duration
	HealthCheckTimeout      time.Duration
	UsableWaitTimeout       time.Duration

	// Localization
	DefaultLanguage    string
	SupportedLanguages []string

	// Reachability
	ReachabilityProbeURL     string
	ReachabilityInterval     time.Duration
	ReachabilityProbeTimeout time.Duration

	// WebSocket channels
	MarketDataWSURL string
	AccountWSURL    string
	SettingsWSURL   string

	// WebSocket
	WSDialTimeout           time.Duration
	WSPingInterval          time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64

	// HTTP services
	CatalogURL       string
	ConfigurationURL string
	ThemeURL         string
	FavoritesURL     string
	HTTPTimeout      time.Duration
	CatalogCacheTTL  time.Duration

	// Cache
	CacheNumCounters int64
	CacheMaxCost     int64

	// Storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort:         getEnvOrDefault("HTTP_PORT", "8080"),
		InstalledVersion: getEnvOrDefault("APP_VERSION", "1.0.0"),

		// Boot defaults
		VersionSettleDelay:      getDurationOrDefault("BOOT_VERSION_SETTLE_DELAY", 500*time.Millisecond),
		MaintenanceCheckTimeout: getDurationOrDefault("BOOT_MAINTENANCE_CHECK_TIMEOUT", 15*time.Second),
		HealthCheckTimeout:      getDurationOrDefault("BOOT_HEALTH_CHECK_TIMEOUT", 5*time.Second),
		UsableWaitTimeout:       getDurationOrDefault("API_USABLE_WAIT_TIMEOUT", 10*time.Second),

		// Localization defaults
		DefaultLanguage:    getEnvOrDefault("DEFAULT_LANGUAGE", "en"),
		SupportedLanguages: getListOrDefault("SUPPORTED_LANGUAGES", []string{"en", "fr", "pt", "es"}),

		// Reachability defaults
		ReachabilityProbeURL:     getEnvOrDefault("REACHABILITY_PROBE_URL", "https://api.sportsbook.local/ping"),
		ReachabilityInterval:     getDurationOrDefault("REACHABILITY_INTERVAL", 5*time.Second),
		ReachabilityProbeTimeout: getDurationOrDefault("REACHABILITY_PROBE_TIMEOUT", 3*time.Second),

		// WebSocket channel defaults
		MarketDataWSURL: getEnvOrDefault("MARKET_DATA_WS_URL", "wss://ws.sportsbook.local/market-data"),
		AccountWSURL:    getEnvOrDefault("ACCOUNT_WS_URL", "wss://ws.sportsbook.local/account"),
		SettingsWSURL:   getEnvOrDefault("SETTINGS_WS_URL", "wss://ws.sportsbook.local/settings"),

		// WebSocket defaults
		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),

		// HTTP service defaults
		CatalogURL:       getEnvOrDefault("CATALOG_URL", "https://api.sportsbook.local/catalog"),
		ConfigurationURL: getEnvOrDefault("CONFIGURATION_URL", "https://api.sportsbook.local/configuration"),
		ThemeURL:         getEnvOrDefault("THEME_URL", "https://api.sportsbook.local/theme"),
		FavoritesURL:     getEnvOrDefault("FAVORITES_URL", "https://api.sportsbook.local/favorites"),
		HTTPTimeout:      getDurationOrDefault("HTTP_TIMEOUT", 10*time.Second),
		CatalogCacheTTL:  getDurationOrDefault("CATALOG_CACHE_TTL", 5*time.Minute),

		// Cache defaults
		CacheNumCounters: getInt64OrDefault("CACHE_NUM_COUNTERS", 10000),
		CacheMaxCost:     getInt64OrDefault("CACHE_MAX_COST", 1000),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "sportsbook"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "sportsbook123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "sportsbook_boot"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	_, err := versioncheck.Parse(c.InstalledVersion)
	if err != nil {
		return fmt.Errorf("APP_VERSION is not a valid version: %w", err)
	}

	urls := []struct {
		key   string
		value string
	}{
		{"REACHABILITY_PROBE_URL", c.ReachabilityProbeURL},
		{"MARKET_DATA_WS_URL", c.MarketDataWSURL},
		{"ACCOUNT_WS_URL", c.AccountWSURL},
		{"SETTINGS_WS_URL", c.SettingsWSURL},
		{"CATALOG_URL", c.CatalogURL},
		{"CONFIGURATION_URL", c.ConfigurationURL},
		{"THEME_URL", c.ThemeURL},
		{"FAVORITES_URL", c.FavoritesURL},
	}
	for _, u := range urls {
		if u.value == "" {
			return fmt.Errorf("%s cannot be empty", u.key)
		}
		parsed, parseErr := url.Parse(u.value)
		if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", u.key, u.value)
		}
	}

	if len(c.SupportedLanguages) == 0 {
		return fmt.Errorf("SUPPORTED_LANGUAGES cannot be empty")
	}
	if !contains(c.SupportedLanguages, c.DefaultLanguage) {
		return fmt.Errorf("DEFAULT_LANGUAGE %q is not in SUPPORTED_LANGUAGES", c.DefaultLanguage)
	}

	if c.VersionSettleDelay < 0 {
		return fmt.Errorf("BOOT_VERSION_SETTLE_DELAY cannot be negative, got %v", c.VersionSettleDelay)
	}

	if c.ReachabilityInterval <= 0 {
		return fmt.Errorf("REACHABILITY_INTERVAL must be positive, got %v", c.ReachabilityInterval)
	}

	if c.WSReconnectBackoffMult < 1.0 {
		return fmt.Errorf("WS_RECONNECT_BACKOFF_MULTIPLIER must be at least 1.0, got %f", c.WSReconnectBackoffMult)
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'console' or 'postgres', got %q", c.StorageMode)
	}

	return nil
}

// PostgresDSN returns the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSL)
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var list []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			list = append(list, item)
		}
	}

	return list
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
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
