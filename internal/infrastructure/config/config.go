package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the client
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	API      APIConfig      `mapstructure:"api"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Session  SessionConfig  `mapstructure:"session"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds REST gateway configuration
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// RealtimeConfig holds websocket channel configuration.
// The socket base URL is overridable independently of the REST base URL.
type RealtimeConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	HandshakeTimeout     time.Duration `mapstructure:"handshake_timeout"`
	ReconnectBackoffBase time.Duration `mapstructure:"reconnect_backoff_base"`
	ReconnectBackoffMax  time.Duration `mapstructure:"reconnect_backoff_max"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
}

// SessionConfig holds token manager configuration
type SessionConfig struct {
	File        string        `mapstructure:"file"`
	ExpirySlack time.Duration `mapstructure:"expiry_slack"`
}

// SyncConfig holds state synchronizer configuration
type SyncConfig struct {
	ActivityPollInterval time.Duration `mapstructure:"activity_poll_interval"`
	ProfilePollInterval  time.Duration `mapstructure:"profile_poll_interval"`
	ActivityLimit        int           `mapstructure:"activity_limit"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// MetricsConfig holds the optional debug metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "Synk")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")

	// API defaults
	viper.SetDefault("api.base_url", "http://localhost:8000")
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("api.rate_limit", 20)
	viper.SetDefault("api.rate_limit_burst", 40)

	// Realtime defaults
	viper.SetDefault("realtime.base_url", "ws://localhost:8000")
	viper.SetDefault("realtime.handshake_timeout", "10s")
	viper.SetDefault("realtime.reconnect_backoff_base", "1s")
	viper.SetDefault("realtime.reconnect_backoff_max", "30s")
	viper.SetDefault("realtime.max_reconnect_attempts", 5)

	// Session defaults; an empty file path falls back to the user config dir
	viper.SetDefault("session.file", "")
	viper.SetDefault("session.expiry_slack", "30s")

	// Sync defaults
	viper.SetDefault("sync.activity_poll_interval", "20s")
	viper.SetDefault("sync.profile_poll_interval", "30s")
	viper.SetDefault("sync.activity_limit", 50)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "json")
	viper.SetDefault("logger.output", "stderr")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.port", 9090)
}

func bindEnvVars() {
	// App
	viper.BindEnv("app.name", "APP_NAME")
	viper.BindEnv("app.version", "APP_VERSION")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")

	// API
	viper.BindEnv("api.base_url", "SYNK_API_URL")
	viper.BindEnv("api.timeout", "SYNK_API_TIMEOUT")
	viper.BindEnv("api.rate_limit", "SYNK_API_RATE_LIMIT")
	viper.BindEnv("api.rate_limit_burst", "SYNK_API_RATE_LIMIT_BURST")

	// Realtime
	viper.BindEnv("realtime.base_url", "SYNK_WS_URL")
	viper.BindEnv("realtime.handshake_timeout", "SYNK_WS_HANDSHAKE_TIMEOUT")
	viper.BindEnv("realtime.reconnect_backoff_base", "SYNK_WS_BACKOFF_BASE")
	viper.BindEnv("realtime.reconnect_backoff_max", "SYNK_WS_BACKOFF_MAX")
	viper.BindEnv("realtime.max_reconnect_attempts", "SYNK_WS_MAX_RECONNECTS")

	// Session
	viper.BindEnv("session.file", "SYNK_SESSION_FILE")
	viper.BindEnv("session.expiry_slack", "SYNK_TOKEN_EXPIRY_SLACK")

	// Sync
	viper.BindEnv("sync.activity_poll_interval", "SYNK_ACTIVITY_POLL_INTERVAL")
	viper.BindEnv("sync.profile_poll_interval", "SYNK_PROFILE_POLL_INTERVAL")
	viper.BindEnv("sync.activity_limit", "SYNK_ACTIVITY_LIMIT")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.format", "LOG_FORMAT")
	viper.BindEnv("logger.output", "LOG_OUTPUT")
	viper.BindEnv("logger.filename", "LOG_FILENAME")

	// Metrics
	viper.BindEnv("metrics.enabled", "ENABLE_METRICS")
	viper.BindEnv("metrics.port", "METRICS_PORT")
}

func validateConfig(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}

	if cfg.Realtime.BaseURL == "" {
		return fmt.Errorf("realtime base URL is required")
	}

	if !strings.HasPrefix(cfg.Realtime.BaseURL, "ws://") && !strings.HasPrefix(cfg.Realtime.BaseURL, "wss://") {
		return fmt.Errorf("realtime base URL must use ws:// or wss://")
	}

	if cfg.Realtime.MaxReconnectAttempts < 0 {
		return fmt.Errorf("max reconnect attempts must not be negative")
	}

	if cfg.Metrics.Enabled && (cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535) {
		return fmt.Errorf("metrics port must be between 1 and 65535")
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
