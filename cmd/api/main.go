// Package main provides the entrypoint for the weather screen API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/api"
	"github.com/nimbusview/nimbus/internal/api/middleware"
	"github.com/nimbusview/nimbus/internal/auth"
	"github.com/nimbusview/nimbus/internal/config"
	"github.com/nimbusview/nimbus/internal/database"
	"github.com/nimbusview/nimbus/internal/diagnostics"
	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/location/google"
	"github.com/nimbusview/nimbus/internal/provider/resilience"
	"github.com/nimbusview/nimbus/internal/schedule"
	"github.com/nimbusview/nimbus/internal/screen"
	"github.com/nimbusview/nimbus/internal/telemetry"
	"github.com/nimbusview/nimbus/internal/trigger"
	"github.com/nimbusview/nimbus/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "nimbus-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.LogLevel)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting nimbus API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if tp.Enabled() {
		log.Info().Str("otlp_endpoint", cfg.OTLPEndpoint).Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HTTP metrics")
	}
	screenMetrics, err := screen.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize screen metrics")
	}

	// Weather provider
	registry := resilience.NewRegistry()
	owm := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     cfg.OWMAPIKey,
		BaseURL:    cfg.OWMBaseURL,
		AirQuality: cfg.AirQuality,
		Registry:   registry,
		Logger:     log.With().Str("component", "openweathermap").Logger(),
	})

	// Location
	platform := location.NewDevicePlatform()
	platform.Report(cfg.DevicePermission, cfg.DeviceCoords)

	var geocoder location.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderOpenWeatherMap:
		geocoder = openweathermap.NewGeocoder(owm, cfg.OWMGeoURL)
	case config.GeocoderGoogle:
		geocoder = google.NewGeocoder(cfg.GoogleAPIKey)
	}

	resolver := location.NewResolver(location.ResolverConfig{
		Platform: platform,
		Geocoder: geocoder,
		Logger:   log.With().Str("component", "location").Logger(),
	})

	// Diagnostics
	var store diagnostics.Repository
	switch cfg.DiagnosticsStore {
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		repo := diagnostics.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to create diagnostics schema")
		}
		store = repo
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")
	default:
		store = diagnostics.NewInMemoryRepository(cfg.DiagnosticsCapacity)
	}

	// Screen
	machine := screen.New(screen.Config{
		Resolver:    resolver,
		Fetcher:     owm,
		Diagnostics: store,
		Settings: screen.Settings{
			LocationKey: cfg.DefaultLocation,
			Unit:        cfg.DefaultUnit,
		},
		FetchTimeout: cfg.FetchTimeout,
		TimeZone:     cfg.TimeZone,
		Metrics:      screenMetrics,
		Logger:       log.With().Str("component", "screen").Logger(),
	})

	machineErr := make(chan error, 1)
	go func() { machineErr <- machine.Run(ctx) }()

	if _, err := machine.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start screen")
	}

	clock := schedule.New(schedule.Config{
		Target:   machine,
		Interval: cfg.TickInterval,
		Logger:   log,
	})
	if err := clock.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start clock")
	}
	defer clock.Stop()

	if cfg.TriggerEnabled() {
		subscriber, err := trigger.NewSubscriber(ctx, trigger.SubscriberConfig{
			ProjectID:        cfg.PubSubProject,
			SubscriptionName: cfg.PubSubSubscription,
			Dispatcher:       trigger.NewDispatcher(machine, log),
			Logger:           log.With().Str("component", "trigger").Logger(),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create trigger subscriber")
		}
		defer func() {
			if err := subscriber.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close trigger subscriber")
			}
		}()

		go func() {
			if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("trigger subscriber stopped")
			}
		}()
	}

	var tokens *auth.TokenService
	if cfg.ControlSecret != "" {
		tokens = auth.NewTokenService(auth.Config{
			SigningKey: cfg.ControlSecret,
			Issuer:     cfg.ControlIssuer,
			Audience:   cfg.ControlAudience,
		})
	} else {
		log.Warn().Msg("CONTROL_JWT_SECRET not set - screen actions are unauthenticated")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            httpMetrics,
		Screen:             machine,
		Platform:           platform,
		Resolver:           resolver,
		Fetcher:            owm,
		Diagnostics:        store,
		Registry:           registry,
		Subsystems:         []string{"diagnostics-" + cfg.DiagnosticsStore},
		Tokens:             tokens,
		TimeZone:           cfg.TimeZone,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequireTLS:         cfg.RequireTLS,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Run returns once in-flight loads and diagnostic writes are done.
	select {
	case <-machineErr:
	case <-shutdownCtx.Done():
		log.Warn().Msg("screen machine did not stop in time")
	}

	log.Info().Msg("server stopped")
}
