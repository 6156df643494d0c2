package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusview/nimbus/internal/api/handler"
	"github.com/nimbusview/nimbus/internal/api/models"
	"github.com/nimbusview/nimbus/internal/weather"
)

func TestWeatherHandler_GetWeather(t *testing.T) {
	fetcher := &stubFetcher{snap: rainySnapshot()}
	h := handler.NewWeatherHandler(fetcher, time.UTC, testLogger)

	w := httptest.NewRecorder()
	h.GetWeather(w, httptest.NewRequest(http.MethodGet, "/v1/weather?q=Amsterdam&unit=F", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)

	var out models.Weather
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Amsterdam", out.City)
	assert.Equal(t, "65°F", out.TemperatureDisplay)
	assert.InDelta(t, 18.3, out.TemperatureC, 1e-9)
	assert.True(t, out.UVIsDefault)
	assert.Contains(t, []string{"rain-day", "rain-night"}, out.IconKey)

	queries := fetcher.queries()
	require.Len(t, queries, 1)
	assert.False(t, queries[0].HasCoordinates())
	assert.Equal(t, "Amsterdam", queries[0].City)
}

func TestWeatherHandler_DefaultsToCelsius(t *testing.T) {
	h := handler.NewWeatherHandler(&stubFetcher{snap: rainySnapshot()}, nil, testLogger)

	w := httptest.NewRecorder()
	h.GetWeather(w, httptest.NewRequest(http.MethodGet, "/v1/weather?q=Amsterdam", http.NoBody))

	var out models.Weather
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "18°C", out.TemperatureDisplay)
}

func TestWeatherHandler_Validation(t *testing.T) {
	h := handler.NewWeatherHandler(&stubFetcher{}, time.UTC, testLogger)

	for _, target := range []string{"/v1/weather", "/v1/weather?q=%20", "/v1/weather?q=Seoul&unit=K"} {
		w := httptest.NewRecorder()
		h.GetWeather(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestWeatherHandler_ProviderErrors(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("%w: status 503", weather.ErrNetwork),
		fmt.Errorf("%w: missing main.temp", weather.ErrParse),
	} {
		h := handler.NewWeatherHandler(&stubFetcher{err: err}, time.UTC, testLogger)

		w := httptest.NewRecorder()
		h.GetWeather(w, httptest.NewRequest(http.MethodGet, "/v1/weather?q=Seoul", http.NoBody))

		assert.Equal(t, http.StatusBadGateway, w.Code, err.Error())

		var problem models.Problem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
		assert.Equal(t, models.ProblemTypeUpstream, problem.Type)
	}
}
