package server

import (
	"fmt"

	"github.com/osmcp/osmcp/internal/config"
	"github.com/osmcp/osmcp/internal/security"
	"github.com/osmcp/osmcp/internal/service"
	"github.com/osmcp/osmcp/internal/tools"
	"github.com/rs/zerolog/log"
)

// Deps holds the collaborators and the registry shared by both transports.
// OpenSearch and Weather are nil when disabled in config.
type Deps struct {
	Registry   *tools.Registry
	OpenSearch *service.OpenSearchService
	Weather    *service.WeatherService
	Audit      *security.AuditLogger
}

// NewDeps builds the enabled services and the tool registry over them.
func NewDeps(cfg *config.Config) (*Deps, error) {
	deps := &Deps{Audit: security.NewAuditLogger(cfg.EnableAuditLogging)}

	// Typed nil pointers must not reach NewDefaultRegistry as non-nil interfaces.
	var cluster tools.OpenSearch
	var weather tools.WeatherClient

	if cfg.OpenSearchEnabled {
		osSvc, err := service.NewOpenSearchService(
			cfg.OpenSearchURL,
			cfg.OpenSearchUsername,
			cfg.OpenSearchPassword,
			cfg.OpenSearchVerifyCerts,
			cfg.OpenSearchMaxRetries,
			cfg.OpenSearchAllowedPatterns,
		)
		if err != nil {
			return nil, fmt.Errorf("opensearch service: %w", err)
		}
		deps.OpenSearch = osSvc
		cluster = osSvc
	}
	if cfg.WeatherEnabled {
		deps.Weather = service.NewWeatherService(cfg.WeatherBaseURL, cfg.WeatherTimeout)
		weather = deps.Weather
	}

	registry, err := tools.NewDefaultRegistry(cluster, weather)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	deps.Registry = registry

	log.Info().
		Bool("opensearch_enabled", deps.OpenSearch != nil).
		Bool("weather_enabled", deps.Weather != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Int("tools", registry.Len()).
		Msg("service configuration")

	if registry.Len() == 0 {
		log.Warn().Msg("no tools registered - enable opensearch or weather")
	}
	return deps, nil
}
