package config

import "time"

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultAPIKeyHeader       = "X-API-Key"
	DefaultRateLimitPerMinute = 60

	DefaultOpenSearchURL        = "http://localhost:9200"
	DefaultOpenSearchMaxRetries = 0

	DefaultWeatherBaseURL = "https://www.jma.go.jp"
	DefaultWeatherTimeout = 10 * time.Second

	DefaultCORSMaxAge = 300

	// EnvPrefix is prepended to every configuration key when read from the
	// environment, e.g. OSMCP_PORT.
	EnvPrefix = "OSMCP"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
