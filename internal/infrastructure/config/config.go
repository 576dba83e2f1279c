package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	API           APIConfig           `mapstructure:"api"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	MockServer    MockServerConfig    `mapstructure:"mock_server"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig holds remote API configuration
type APIConfig struct {
	BaseURLProd  string        `mapstructure:"base_url_prod"`
	BaseURLLocal string        `mapstructure:"base_url_local"`
	UseLocal     bool          `mapstructure:"use_local"`
	BasePath     string        `mapstructure:"base_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retry_max"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// BaseURL resolves the effective base URL honoring the local switch.
func (cfg *APIConfig) BaseURL() string {
	local := strings.TrimRight(cfg.BaseURLLocal, "/")
	prod := strings.TrimRight(cfg.BaseURLProd, "/")
	if cfg.UseLocal && local != "" {
		return local
	}
	if prod != "" {
		return prod
	}
	return local
}

// CacheConfig holds read-through cache configuration
type CacheConfig struct {
	CategoriesTTL time.Duration `mapstructure:"categories_ttl"`
}

// NotificationsConfig holds local notification configuration
type NotificationsConfig struct {
	Platform  string `mapstructure:"platform"`
	ChannelID string `mapstructure:"channel_id"`
	Sound     string `mapstructure:"sound"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// MockServerConfig holds the local mock API server configuration
type MockServerConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from the environment and an optional .env file
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
	viper.SetDefault("app.name", "Hogar")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")

	// API defaults
	viper.SetDefault("api.base_url_prod", "")
	viper.SetDefault("api.base_url_local", "http://localhost:8787")
	viper.SetDefault("api.use_local", false)
	viper.SetDefault("api.base_path", "/AppP")
	viper.SetDefault("api.timeout", "15s")
	viper.SetDefault("api.retry_max", 2)
	viper.SetDefault("api.rate_limit", 10)
	viper.SetDefault("api.rate_burst", 5)

	// Cache defaults
	viper.SetDefault("cache.categories_ttl", "60s")

	// Notification defaults
	viper.SetDefault("notifications.platform", "android")
	viper.SetDefault("notifications.channel_id", "reminders")
	viper.SetDefault("notifications.sound", "notifications.wav")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output", "stdout")

	// Mock server defaults
	viper.SetDefault("mock_server.port", 8787)
}

func bindEnvVars() {
	// App
	viper.BindEnv("app.name", "APP_NAME")
	viper.BindEnv("app.version", "APP_VERSION")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")

	// API
	viper.BindEnv("api.base_url_prod", "API_BASE_URL_PROD")
	viper.BindEnv("api.base_url_local", "API_BASE_URL_LOCAL")
	viper.BindEnv("api.use_local", "API_USE_LOCAL")
	viper.BindEnv("api.base_path", "API_BASE_PATH")
	viper.BindEnv("api.timeout", "API_TIMEOUT")
	viper.BindEnv("api.retry_max", "API_RETRY_MAX")
	viper.BindEnv("api.rate_limit", "API_RATE_LIMIT")
	viper.BindEnv("api.rate_burst", "API_RATE_BURST")

	// Cache
	viper.BindEnv("cache.categories_ttl", "CACHE_CATEGORIES_TTL")

	// Notifications
	viper.BindEnv("notifications.platform", "NOTIFICATIONS_PLATFORM")
	viper.BindEnv("notifications.channel_id", "NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("notifications.sound", "NOTIFICATIONS_SOUND")

	// Logger
	viper.BindEnv("logger.level", "LOG_LEVEL")
	viper.BindEnv("logger.format", "LOG_FORMAT")
	viper.BindEnv("logger.output", "LOG_OUTPUT")
	viper.BindEnv("logger.filename", "LOG_FILENAME")

	// Mock server
	viper.BindEnv("mock_server.port", "MOCK_SERVER_PORT")
}

func validateConfig(cfg *Config) error {
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}

	if cfg.Cache.CategoriesTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}

	switch cfg.Notifications.Platform {
	case "android", "ios":
	default:
		return fmt.Errorf("notifications platform must be android or ios, got %q", cfg.Notifications.Platform)
	}

	if cfg.MockServer.Port <= 0 || cfg.MockServer.Port > 65535 {
		return fmt.Errorf("mock server port must be between 1 and 65535")
	}

	return nil
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}
