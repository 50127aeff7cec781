package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/osmcp/osmcp/internal/config"
	"github.com/osmcp/osmcp/internal/handler"
	"github.com/osmcp/osmcp/internal/middleware"
	"github.com/rs/zerolog/log"
)

func (s *Server) routes() http.Handler {
	cfg := s.cfg
	deps := s.deps

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("auth enabled but no API keys configured - tool endpoints are open")
	}

	// ─── Handlers ────────────────────────────────────────────────────────────────
	checkers := map[string]handler.HealthChecker{"opensearch": nil, "weather": nil}
	if deps.OpenSearch != nil {
		checkers["opensearch"] = deps.OpenSearch
	}
	if deps.Weather != nil {
		checkers["weather"] = deps.Weather
	}
	healthH := handler.NewHealthHandler(checkers)
	toolsH := handler.NewToolsHandler(deps.Registry, deps.Audit)

	// ─── Router ──────────────────────────────────────────────────────────────────
	corsCfg := middleware.DefaultCORSConfig(cfg.CORSOrigins, cfg.APIKeyHeader)
	corsCfg.MaxAge = config.DefaultCORSMaxAge

	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(corsCfg))

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	r.Group(func(r chi.Router) {
		if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
			r.Use(middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
		}
		if cfg.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Get("/tools", toolsH.ListTools)
			r.Post("/tools/{name}", toolsH.CallTool)

			if deps.OpenSearch != nil {
				osH := handler.NewOpenSearchHandler(deps.OpenSearch)
				r.Get("/opensearch/cluster/health", osH.ClusterHealth)
			}
		})
	})

	return r
}
