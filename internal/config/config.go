package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	APIPrefix   string `mapstructure:"api_prefix"`
	LogLevel    string `mapstructure:"log_level"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Auth
	APIKeyHeader string   `mapstructure:"api_key_header"`
	APIKeys      []string `mapstructure:"api_keys"`
	EnableAuth   bool     `mapstructure:"enable_auth"`

	// Rate Limiting
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`

	// Audit
	EnableAuditLogging bool `mapstructure:"enable_audit_logging"`

	// OpenSearch
	OpenSearchEnabled         bool     `mapstructure:"opensearch_enabled"`
	OpenSearchURL             string   `mapstructure:"opensearch_url"`
	OpenSearchUsername        string   `mapstructure:"opensearch_username"`
	OpenSearchPassword        string   `mapstructure:"opensearch_password"`
	OpenSearchVerifyCerts     bool     `mapstructure:"opensearch_verify_certs"`
	OpenSearchMaxRetries      int      `mapstructure:"opensearch_max_retries"`
	OpenSearchAllowedPatterns []string `mapstructure:"opensearch_allowed_patterns"`

	// Weather (JMA forecast overview)
	WeatherEnabled bool          `mapstructure:"weather_enabled"`
	WeatherBaseURL string        `mapstructure:"weather_base_url"`
	WeatherTimeout time.Duration `mapstructure:"weather_timeout"`
}

// Load reads configuration from defaults, the optional file at path and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller-supplied viper instance, so command-line flags
// bound to v take precedence over the file and the environment.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindConventionalEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("api_prefix", DefaultAPIPrefix)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("cors_origins", DefaultCORSOrigins)
	v.SetDefault("api_key_header", DefaultAPIKeyHeader)
	v.SetDefault("api_keys", []string{})
	v.SetDefault("enable_auth", true)
	v.SetDefault("rate_limit_per_minute", DefaultRateLimitPerMinute)
	v.SetDefault("enable_audit_logging", true)

	v.SetDefault("opensearch_enabled", true)
	v.SetDefault("opensearch_url", DefaultOpenSearchURL)
	v.SetDefault("opensearch_username", "")
	v.SetDefault("opensearch_password", "")
	v.SetDefault("opensearch_verify_certs", true)
	v.SetDefault("opensearch_max_retries", DefaultOpenSearchMaxRetries)
	v.SetDefault("opensearch_allowed_patterns", []string{})

	v.SetDefault("weather_enabled", false)
	v.SetDefault("weather_base_url", DefaultWeatherBaseURL)
	v.SetDefault("weather_timeout", DefaultWeatherTimeout)
}

// bindConventionalEnv accepts the unprefixed OpenSearch variables most
// client tooling already exports.
func bindConventionalEnv(v *viper.Viper) {
	_ = v.BindEnv("opensearch_url", EnvPrefix+"_OPENSEARCH_URL", "OPENSEARCH_URL")
	_ = v.BindEnv("opensearch_username", EnvPrefix+"_OPENSEARCH_USERNAME", "OPENSEARCH_USERNAME")
	_ = v.BindEnv("opensearch_password", EnvPrefix+"_OPENSEARCH_PASSWORD", "OPENSEARCH_PASSWORD")
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.OpenSearchEnabled {
		if u, err := url.Parse(c.OpenSearchURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid opensearch_url %q", c.OpenSearchURL))
		}
		if c.OpenSearchMaxRetries < 0 {
			errs = append(errs, fmt.Errorf("opensearch_max_retries must not be negative"))
		}
	}
	if c.WeatherEnabled {
		if u, err := url.Parse(c.WeatherBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid weather_base_url %q", c.WeatherBaseURL))
		}
		if c.WeatherTimeout <= 0 {
			errs = append(errs, fmt.Errorf("weather_timeout must be positive"))
		}
	}
	return errors.Join(errs...)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
