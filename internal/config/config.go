// Package config loads service configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/database"
	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/weather"
)

// Geocoder backends.
const (
	GeocoderOpenWeatherMap = "openweathermap"
	GeocoderGoogle         = "google"
	GeocoderNone           = "none"
)

// Diagnostics stores.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// ErrMissingAPIKey is returned when no weather provider key is configured.
var ErrMissingAPIKey = errors.New("OWM_API_KEY is required")

// Config is the full service configuration.
type Config struct {
	Port        string
	Environment string
	LogLevel    zerolog.Level

	OTelEnabled     bool
	OTLPEndpoint    string
	OTelSampleRatio float64

	// Weather provider.
	OWMAPIKey  string
	OWMBaseURL string
	OWMGeoURL  string
	AirQuality bool

	// Geocoder selects the reverse geocoding backend.
	Geocoder     string
	GoogleAPIKey string

	// Screen defaults; never persisted.
	DefaultLocation string
	DefaultUnit     weather.Unit
	TimeZone        *time.Location
	FetchTimeout    time.Duration
	TickInterval    time.Duration

	// Device seeds the device location platform at startup.
	DevicePermission location.Permission
	DeviceCoords     *location.Coordinates

	DiagnosticsStore    string
	DiagnosticsCapacity int
	Database            database.Config

	// Pub/Sub trigger; disabled unless both are set.
	PubSubProject      string
	PubSubSubscription string

	RateLimitPerMinute int
	RequireTLS         bool

	// Control tokens guard screen actions; empty disables the check.
	ControlSecret   string
	ControlIssuer   string
	ControlAudience string
}

// TriggerEnabled reports whether the Pub/Sub trigger is configured.
func (c Config) TriggerEnabled() bool {
	return c.PubSubProject != "" && c.PubSubSubscription != ""
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (Config, error) {
	p := &parser{}

	cfg := Config{
		Port:        getEnvOrDefault("APP_PORT", "8080"),
		Environment: getEnvOrDefault("APP_ENV", "development"),

		OTelEnabled:  p.bool("OTEL_ENABLED", false),
		OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		OWMAPIKey:  os.Getenv("OWM_API_KEY"),
		OWMBaseURL: os.Getenv("OWM_BASE_URL"),
		OWMGeoURL:  os.Getenv("OWM_GEO_URL"),
		AirQuality: p.bool("AIR_QUALITY_ENABLED", false),

		Geocoder:     strings.ToLower(getEnvOrDefault("GEOCODER", GeocoderOpenWeatherMap)),
		GoogleAPIKey: os.Getenv("GOOGLE_GEOCODING_API_KEY"),

		DefaultLocation: getEnvOrDefault("DEFAULT_LOCATION", location.CurrentLocationKey),
		FetchTimeout:    p.duration("FETCH_TIMEOUT", 15*time.Second),
		TickInterval:    p.duration("TICK_INTERVAL", time.Minute),

		DiagnosticsStore:    strings.ToLower(getEnvOrDefault("DIAGNOSTICS_STORE", StoreMemory)),
		DiagnosticsCapacity: p.int("DIAGNOSTICS_CAPACITY", 256),

		PubSubProject:      os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription: os.Getenv("PUBSUB_SUBSCRIPTION"),

		RateLimitPerMinute: p.int("RATE_LIMIT_PER_MINUTE", 120),
		RequireTLS:         p.bool("REQUIRE_TLS", false),

		ControlSecret:   os.Getenv("CONTROL_JWT_SECRET"),
		ControlIssuer:   os.Getenv("CONTROL_JWT_ISSUER"),
		ControlAudience: os.Getenv("CONTROL_JWT_AUDIENCE"),
	}

	level, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		p.fail("LOG_LEVEL", err)
	}
	cfg.LogLevel = level

	unit, err := weather.ParseUnit(getEnvOrDefault("DEFAULT_UNIT", "C"))
	if err != nil {
		p.fail("DEFAULT_UNIT", err)
	}
	cfg.DefaultUnit = unit

	cfg.TimeZone = time.Local
	if name := os.Getenv("DISPLAY_TIMEZONE"); name != "" {
		tz, err := time.LoadLocation(name)
		if err != nil {
			p.fail("DISPLAY_TIMEZONE", err)
		} else {
			cfg.TimeZone = tz
		}
	}

	if ratio, ok := p.float("OTEL_SAMPLE_RATIO"); ok {
		cfg.OTelSampleRatio = ratio
	}

	cfg.DevicePermission, cfg.DeviceCoords = p.device()
	cfg.Database = p.database()

	if err := p.err(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	if c.OWMAPIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if !location.IsKnown(c.DefaultLocation) {
		errs = append(errs, fmt.Errorf("DEFAULT_LOCATION: %w: %q", location.ErrUnknownLocation, c.DefaultLocation))
	}
	switch c.Geocoder {
	case GeocoderOpenWeatherMap, GeocoderNone:
	case GeocoderGoogle:
		if c.GoogleAPIKey == "" {
			errs = append(errs, errors.New("GOOGLE_GEOCODING_API_KEY is required when GEOCODER=google"))
		}
	default:
		errs = append(errs, fmt.Errorf("GEOCODER: unknown backend %q", c.Geocoder))
	}
	switch c.DiagnosticsStore {
	case StoreMemory, StorePostgres:
	default:
		errs = append(errs, fmt.Errorf("DIAGNOSTICS_STORE: unknown store %q", c.DiagnosticsStore))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("FETCH_TIMEOUT must be positive"))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.TickInterval < time.Second {
		errs = append(errs, errors.New("TICK_INTERVAL must be at least 1s"))
	}

	return errors.Join(errs...)
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs []error
}

func (p *parser) fail(key string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}

func (p *parser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return b
}

func (p *parser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) float(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return 0, false
	}
	return f, true
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

// device reads DEVICE_PERMISSION, DEVICE_LAT and DEVICE_LON.
func (p *parser) device() (location.Permission, *location.Coordinates) {
	permission := location.Permission(getEnvOrDefault("DEVICE_PERMISSION", string(location.PermissionUndetermined)))
	switch permission {
	case location.PermissionGranted, location.PermissionDenied, location.PermissionUndetermined:
	default:
		p.fail("DEVICE_PERMISSION", fmt.Errorf("unknown permission %q", permission))
		permission = location.PermissionUndetermined
	}

	lat, okLat := p.float("DEVICE_LAT")
	lon, okLon := p.float("DEVICE_LON")
	if !okLat || !okLon {
		return permission, nil
	}
	return permission, &location.Coordinates{Lat: lat, Lon: lon}
}

func (p *parser) database() database.Config {
	cfg := database.DefaultConfig()
	cfg.URL = os.Getenv("DATABASE_URL")
	cfg.Host = getEnvOrDefault("DB_HOST", cfg.Host)
	cfg.Port = p.int("DB_PORT", cfg.Port)
	cfg.User = getEnvOrDefault("DB_USER", cfg.User)
	cfg.Password = getEnvOrDefault("DB_PASSWORD", cfg.Password)
	cfg.Database = getEnvOrDefault("DB_NAME", cfg.Database)
	cfg.SSLMode = getEnvOrDefault("DB_SSL_MODE", cfg.SSLMode)
	cfg.MaxConns = p.int("DB_MAX_CONNS", cfg.MaxConns)
	cfg.MinConns = p.int("DB_MIN_CONNS", cfg.MinConns)
	cfg.ConnMaxLifetime = p.duration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime)
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
