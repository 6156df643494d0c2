package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/api/models"
	"github.com/nimbusview/nimbus/internal/api/response"
	"github.com/nimbusview/nimbus/internal/weather"
)

// Fetcher loads the current weather for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q weather.Query) (weather.Snapshot, error)
}

// WeatherHandler serves ad-hoc city lookups. It never touches the screen
// state.
type WeatherHandler struct {
	fetcher Fetcher
	tz      *time.Location
	now     func() time.Time
	logger  zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler. A nil tz means time.Local.
func NewWeatherHandler(fetcher Fetcher, tz *time.Location, logger zerolog.Logger) *WeatherHandler {
	if tz == nil {
		tz = time.Local
	}
	return &WeatherHandler{fetcher: fetcher, tz: tz, now: time.Now, logger: logger}
}

// GetWeather handles GET /v1/weather?q=<city>&unit=<C|F>.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("q"))
	if city == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "q", Message: "city name is required", Code: "REQUIRED"},
		})
		return
	}

	unit := weather.Celsius
	if raw := r.URL.Query().Get("unit"); raw != "" {
		parsed, err := weather.ParseUnit(raw)
		if err != nil {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "unit", Message: "must be C or F", Code: "INVALID"},
			})
			return
		}
		unit = parsed
	}

	snap, err := h.fetcher.Fetch(r.Context(), weather.ByCity(city))
	if err != nil {
		h.logger.Warn().Err(err).Str("city", city).Msg("weather lookup failed")
		switch {
		case errors.Is(err, weather.ErrParse):
			response.BadGateway(w, r, "weather provider returned an unusable response")
		default:
			response.BadGateway(w, r, "weather provider is unreachable")
		}
		return
	}

	night := weather.IsNight(h.now().In(h.tz))
	name := snap.City
	if name == "" {
		name = city
	}

	response.JSON(w, r, http.StatusOK, models.Weather{
		City:                   name,
		TemperatureC:           snap.TemperatureC,
		TemperatureDisplay:     weather.FormatTemperature(snap.TemperatureC, unit),
		ConditionMain:          snap.ConditionMain,
		ConditionDescription:   snap.ConditionDescription,
		IconKey:                string(weather.IconKeyFor(snap.ConditionMain, snap.ConditionDescription, night)),
		HumidityPct:            snap.HumidityPct,
		PrecipitationChancePct: snap.PrecipitationChancePct,
		PressureHpa:            snap.PressureHpa,
		VisibilityM:            snap.VisibilityM,
		WindSpeedMs:            snap.WindSpeedMs,
		UVIndex:                snap.UVIndex,
		UVIsDefault:            snap.UVIsDefault,
		AirQualityIndex:        snap.AirQualityIndex,
		AirQualityIsDefault:    snap.AirQualityIsDefault,
		Sunrise:                models.Timestamp(time.Unix(snap.SunriseEpoch, 0).In(h.tz)),
		Sunset:                 models.Timestamp(time.Unix(snap.SunsetEpoch, 0).In(h.tz)),
		FetchedAt:              models.Timestamp(snap.FetchedAt),
	})
}
