// Package openweathermap fetches current conditions, air quality and reverse
// geocoding results from the OpenWeatherMap API.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/provider/resilience"
	"github.com/nimbusview/nimbus/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap data API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// maxBodyBytes caps how much of a provider response is read.
	maxBodyBytes = 1 << 20
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap API).
	BaseURL string

	// AirQuality enables the air pollution lookup after each successful fetch.
	AirQuality bool

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Registry receives call outcomes (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	airQuality bool
	httpClient *resilience.Client
	registry   *resilience.Registry
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		rc := resilience.DefaultClientConfig(ProviderName)
		rc.Registry = cfg.Registry
		httpClient = resilience.NewClient(rc)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		airQuality: cfg.AirQuality,
		httpClient: httpClient,
		registry:   cfg.Registry,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Fetch returns the current conditions for q. Metric units are always
// requested; display conversion happens later. Every failure wraps
// weather.ErrNetwork or weather.ErrParse.
func (c *Client) Fetch(ctx context.Context, q weather.Query) (weather.Snapshot, error) {
	params := url.Values{}
	if q.HasCoordinates() {
		params.Set("lat", formatCoord(q.Lat))
		params.Set("lon", formatCoord(q.Lon))
	} else {
		params.Set("q", q.City)
	}

	var resp currentWeatherResponse
	if err := c.get(ctx, c.baseURL+"/weather", params, &resp); err != nil {
		c.recordFailure(err)
		return weather.Snapshot{}, err
	}

	snapshot, err := toSnapshot(&resp)
	if err != nil {
		c.recordFailure(err)
		return weather.Snapshot{}, err
	}
	c.recordSuccess()

	c.applyAirQuality(ctx, &snapshot, resp.Coord)

	return snapshot, nil
}

// applyAirQuality fills the AQI from the air pollution endpoint. Any failure
// leaves the placeholder in place.
func (c *Client) applyAirQuality(ctx context.Context, s *weather.Snapshot, coord *coordinates) {
	if !c.airQuality || coord == nil {
		return
	}

	params := url.Values{}
	params.Set("lat", formatCoord(coord.Lat))
	params.Set("lon", formatCoord(coord.Lon))

	var resp airPollutionResponse
	if err := c.get(ctx, c.baseURL+"/air_pollution", params, &resp); err != nil {
		c.logger.Warn().Err(err).Msg("air quality lookup failed, using placeholder")
		return
	}
	if len(resp.List) == 0 || resp.List[0].Main.AQI < 1 || resp.List[0].Main.AQI > 5 {
		c.logger.Warn().Msg("air quality response has no usable index, using placeholder")
		return
	}

	s.AirQualityIndex = resp.List[0].Main.AQI
	s.AirQualityIsDefault = false
}

// get issues a GET with the API key appended and decodes a 200 response into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: creating request: %w", weather.ErrNetwork, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: executing request: %w", weather.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: unexpected status code: %d", weather.ErrNetwork, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", weather.ErrParse, err)
	}

	return nil
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.httpClient.Name())
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.httpClient.Name(), err)
	}
}

// toSnapshot validates the required fields and builds a whole snapshot.
// A missing field fails the conversion instead of yielding a partial reading.
func toSnapshot(resp *currentWeatherResponse) (weather.Snapshot, error) {
	switch {
	case resp.Main == nil || resp.Main.Temp == nil:
		return weather.Snapshot{}, missing("main.temp")
	case resp.Main.Humidity == nil:
		return weather.Snapshot{}, missing("main.humidity")
	case resp.Sys == nil || resp.Sys.Sunrise == nil:
		return weather.Snapshot{}, missing("sys.sunrise")
	case resp.Sys.Sunset == nil:
		return weather.Snapshot{}, missing("sys.sunset")
	case len(resp.Weather) == 0:
		return weather.Snapshot{}, missing("weather[0]")
	}

	humidity := int(math.Round(*resp.Main.Humidity))
	if humidity < 0 || humidity > 100 {
		return weather.Snapshot{}, fmt.Errorf("%w: humidity %d out of range", weather.ErrParse, humidity)
	}

	condition := resp.Weather[0]
	s := weather.Snapshot{
		City:                   resp.Name,
		TemperatureC:           *resp.Main.Temp,
		ConditionMain:          condition.Main,
		ConditionDescription:   condition.Description,
		HumidityPct:            humidity,
		SunriseEpoch:           *resp.Sys.Sunrise,
		SunsetEpoch:            *resp.Sys.Sunset,
		PressureHpa:            resp.Main.Pressure,
		VisibilityM:            resp.Visibility,
		PrecipitationChancePct: weather.EstimatePrecipitationChancePct(condition.Main, condition.Description),
		UVIndex:                weather.DefaultUVIndex,
		UVIsDefault:            true,
		AirQualityIndex:        weather.DefaultAirQualityIndex,
		AirQualityIsDefault:    true,
		FetchedAt:              time.Now(),
	}
	if resp.Wind != nil {
		s.WindSpeedMs = resp.Wind.Speed
	}
	if resp.Dt > 0 {
		s.ObservedAt = time.Unix(resp.Dt, 0)
	}

	return s, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", weather.ErrParse, field)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// OpenWeatherMap API response structures. Required fields are pointers so a
// missing value can be told apart from a zero one.

type coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type currentWeatherResponse struct {
	Coord   *coordinates `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Pressure float64  `json:"pressure"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       *struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys *struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

type airPollutionResponse struct {
	List []struct {
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
	} `json:"list"`
}
