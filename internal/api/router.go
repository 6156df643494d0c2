// Package api provides the HTTP API of the weather screen.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/api/handler"
	"github.com/nimbusview/nimbus/internal/api/middleware"
	"github.com/nimbusview/nimbus/internal/auth"
	"github.com/nimbusview/nimbus/internal/diagnostics"
	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/provider/resilience"
)

// DefaultRateLimitPerMinute is the per-IP budget when none is configured.
const DefaultRateLimitPerMinute = 120

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Screen is the running state machine (required).
	Screen handler.Screen

	// Platform receives device reports; Resolver reports and drops its cached
	// device location (both required).
	Platform *location.DevicePlatform
	Resolver handler.DeviceResolver

	// Fetcher serves ad-hoc city lookups (required).
	Fetcher handler.Fetcher

	// Diagnostics lists recorded failures (required).
	Diagnostics diagnostics.Repository

	// Registry reports provider health (optional).
	Registry *resilience.Registry

	// Subsystems are reported in the status endpoint.
	Subsystems []string

	// Tokens guards actions, device reports and diagnostics. Nil leaves
	// them open.
	Tokens *auth.TokenService

	// TimeZone renders lookup times. Default: time.Local.
	TimeZone *time.Location

	RateLimitPerMinute int
	RequireTLS         bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "nimbus-api"
	}
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = DefaultRateLimitPerMinute
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:    cfg.Version,
		BuildTime:  cfg.BuildTime,
		Screen:     cfg.Screen,
		Registry:   cfg.Registry,
		Subsystems: cfg.Subsystems,
	})
	screenHandler := handler.NewScreenHandler(cfg.Screen, cfg.Logger)
	deviceHandler := handler.NewDeviceHandler(cfg.Platform, cfg.Resolver, cfg.Logger)
	diagnosticsHandler := handler.NewDiagnosticsHandler(cfg.Diagnostics)
	weatherHandler := handler.NewWeatherHandler(cfg.Fetcher, cfg.TimeZone, cfg.Logger)

	standardRateLimit := middleware.RateLimitByIP(middleware.PerMinute(perMinute))

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(middleware.RequireScope(cfg.Tokens, auth.ScopeDiagnostics)).Get("/status", opsHandler.SystemStatus)
		})

		r.Route("/screen", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", screenHandler.GetScreen)
			r.Get("/locations", screenHandler.ListLocations)

			// Actions change what every viewer sees.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireScope(cfg.Tokens, auth.ScopeControl))
				r.Use(middleware.RateLimitBySubject(middleware.PerMinute(perMinute)))
				r.Post("/refresh", screenHandler.Refresh)
				r.Post("/notice:dismiss", screenHandler.DismissNotice)
				r.Put("/location", screenHandler.SelectLocation)
				r.Put("/unit", screenHandler.SetUnit)
				r.Put("/theme", screenHandler.SetTheme)
				r.Put("/colorblind", screenHandler.SetColorblind)
			})
		})

		r.Route("/device", func(r chi.Router) {
			r.Use(middleware.RequireScope(cfg.Tokens, auth.ScopeDevice))
			r.Use(standardRateLimit)
			r.Get("/location", deviceHandler.GetLocation)
			r.Put("/location", deviceHandler.ReportLocation)
		})

		r.With(middleware.RequireScope(cfg.Tokens, auth.ScopeDiagnostics), standardRateLimit).
			Get("/diagnostics", diagnosticsHandler.ListRecords)

		// Each lookup is a provider call.
		r.With(middleware.RateLimitByIP(middleware.LookupRateLimit)).Get("/weather", weatherHandler.GetWeather)
	})

	return r
}
