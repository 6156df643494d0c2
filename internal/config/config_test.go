package config_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusview/nimbus/internal/config"
	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/weather"
)

// clearEnv blanks every variable FromEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "APP_ENV", "LOG_LEVEL", "OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SAMPLE_RATIO",
		"OWM_API_KEY", "OWM_BASE_URL", "OWM_GEO_URL", "AIR_QUALITY_ENABLED",
		"GEOCODER", "GOOGLE_GEOCODING_API_KEY",
		"DEFAULT_LOCATION", "DEFAULT_UNIT", "DISPLAY_TIMEZONE", "FETCH_TIMEOUT", "TICK_INTERVAL",
		"DEVICE_PERMISSION", "DEVICE_LAT", "DEVICE_LON",
		"DIAGNOSTICS_STORE", "DIAGNOSTICS_CAPACITY",
		"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"DB_MAX_CONNS", "DB_MIN_CONNS", "DB_CONN_MAX_LIFETIME",
		"PUBSUB_PROJECT_ID", "PUBSUB_SUBSCRIPTION", "RATE_LIMIT_PER_MINUTE",
		"REQUIRE_TLS", "CONTROL_JWT_SECRET", "CONTROL_JWT_ISSUER", "CONTROL_JWT_AUDIENCE",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWM_API_KEY", "test-key")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "test-key", cfg.OWMAPIKey)
	assert.Equal(t, config.GeocoderOpenWeatherMap, cfg.Geocoder)
	assert.Equal(t, location.CurrentLocationKey, cfg.DefaultLocation)
	assert.Equal(t, weather.Celsius, cfg.DefaultUnit)
	assert.Equal(t, time.Local, cfg.TimeZone)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Minute, cfg.TickInterval)
	assert.Equal(t, location.PermissionUndetermined, cfg.DevicePermission)
	assert.Nil(t, cfg.DeviceCoords)
	assert.Equal(t, config.StoreMemory, cfg.DiagnosticsStore)
	assert.Equal(t, 256, cfg.DiagnosticsCapacity)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.False(t, cfg.TriggerEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWM_API_KEY", "test-key")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.5")
	t.Setenv("AIR_QUALITY_ENABLED", "1")
	t.Setenv("GEOCODER", "Google")
	t.Setenv("GOOGLE_GEOCODING_API_KEY", "g-key")
	t.Setenv("DEFAULT_LOCATION", "Japan")
	t.Setenv("DEFAULT_UNIT", "F")
	t.Setenv("DISPLAY_TIMEZONE", "Asia/Tokyo")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("TICK_INTERVAL", "30s")
	t.Setenv("DEVICE_PERMISSION", "granted")
	t.Setenv("DEVICE_LAT", "52.37")
	t.Setenv("DEVICE_LON", "4.89")
	t.Setenv("DIAGNOSTICS_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/nimbus")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("PUBSUB_PROJECT_ID", "proj")
	t.Setenv("PUBSUB_SUBSCRIPTION", "screen-triggers")
	t.Setenv("REQUIRE_TLS", "true")
	t.Setenv("CONTROL_JWT_SECRET", "s3cret")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.OTelEnabled)
	assert.InDelta(t, 0.5, cfg.OTelSampleRatio, 1e-9)
	assert.True(t, cfg.AirQuality)
	assert.Equal(t, config.GeocoderGoogle, cfg.Geocoder)
	assert.Equal(t, "Japan", cfg.DefaultLocation)
	assert.Equal(t, weather.Fahrenheit, cfg.DefaultUnit)
	assert.Equal(t, "Asia/Tokyo", cfg.TimeZone.String())
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, location.PermissionGranted, cfg.DevicePermission)
	require.NotNil(t, cfg.DeviceCoords)
	assert.InDelta(t, 52.37, cfg.DeviceCoords.Lat, 1e-9)
	assert.InDelta(t, 4.89, cfg.DeviceCoords.Lon, 1e-9)
	assert.Equal(t, config.StorePostgres, cfg.DiagnosticsStore)
	assert.Equal(t, "postgres://u:p@db:5432/nimbus", cfg.Database.ConnectionString())
	assert.Equal(t, 10, cfg.Database.MaxConns)
	assert.True(t, cfg.TriggerEnabled())
	assert.True(t, cfg.RequireTLS)
	assert.Equal(t, "s3cret", cfg.ControlSecret)
}

func TestFromEnv_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := config.FromEnv()
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestFromEnv_UnknownDefaultLocation(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWM_API_KEY", "test-key")
	t.Setenv("DEFAULT_LOCATION", "Atlantis")

	_, err := config.FromEnv()
	assert.ErrorIs(t, err, location.ErrUnknownLocation)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"log level", "LOG_LEVEL", "loud"},
		{"unit", "DEFAULT_UNIT", "K"},
		{"timezone", "DISPLAY_TIMEZONE", "Mars/Olympus"},
		{"fetch timeout", "FETCH_TIMEOUT", "soon"},
		{"zero fetch timeout", "FETCH_TIMEOUT", "0s"},
		{"tick interval", "TICK_INTERVAL", "10ms"},
		{"bool", "OTEL_ENABLED", "maybe"},
		{"int", "DIAGNOSTICS_CAPACITY", "lots"},
		{"geocoder", "GEOCODER", "bing"},
		{"google without key", "GEOCODER", "google"},
		{"store", "DIAGNOSTICS_STORE", "redis"},
		{"rate limit", "RATE_LIMIT_PER_MINUTE", "0"},
		{"permission", "DEVICE_PERMISSION", "sometimes"},
		{"latitude", "DEVICE_LAT", "north"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OWM_API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)

			_, err := config.FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestFromEnv_PartialDeviceFixIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("OWM_API_KEY", "test-key")
	t.Setenv("DEVICE_LAT", "52.37")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Nil(t, cfg.DeviceCoords)
}
