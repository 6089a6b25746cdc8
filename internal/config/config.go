package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvAPIKey is the environment variable holding the RankPath API key
const EnvAPIKey = "RANKPATH_API_KEY"

// ErrMissingAPIKey is reported by Validate when no API key is configured
var ErrMissingAPIKey = errors.New(EnvAPIKey + " environment variable is required")

// Config holds all application configuration
type Config struct {
	// APIKey is the bearer token sent to RankPath
	APIKey string `mapstructure:"api_key"`

	// API client configuration
	API APIConfig `mapstructure:"api"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig holds RankPath client configuration
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	// Addr is the listen address of /metrics; empty disables it
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence. Each call uses its own
// viper instance.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.rankpath")
	}

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env still apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api_key", "")

	v.SetDefault("api.base_url", "https://rankpath.io/api")
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("api.user_agent", "rankpath-mcp")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.addr", "")
}

// bindEnvVars maps RANKPATH_* environment variables onto config keys,
// e.g. RANKPATH_API_BASE_URL -> api.base_url
func bindEnvVars(v *viper.Viper) error {
	v.SetEnvPrefix("RANKPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("api_key", EnvAPIKey); err != nil {
		return fmt.Errorf("bind %s: %w", EnvAPIKey, err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
