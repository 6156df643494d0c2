package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/nimbusview/nimbus/internal/api/middleware"
)

func TestNewMetrics(t *testing.T) {
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}

// collectRequestTotals returns request counts keyed by route and status.
func collectRequestTotals(t *testing.T, reader *sdkmetric.ManualReader) map[[2]string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[[2]string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http.server.request.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value(attribute.Key("http.route"))
				status, _ := dp.Attributes.Value(attribute.Key("http.response.status_code"))
				totals[[2]string{route.AsString(), status.AsString()}] += dp.Value
			}
		}
	}
	return totals
}

func TestMetrics_Middleware_LabelsByRoutePattern(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := middleware.NewMetricsWithProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/v1/screen/{part}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Put("/v1/screen/unit", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	for _, path := range []string{"/v1/screen/locations", "/v1/screen/anything"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/v1/screen/unit", http.NoBody))
	require.Equal(t, http.StatusBadRequest, w.Code)

	totals := collectRequestTotals(t, reader)
	assert.Equal(t, int64(2), totals[[2]string{"/v1/screen/{part}", "200"}])
	assert.Equal(t, int64(1), totals[[2]string{"/v1/screen/unit", "400"}])
}

func TestMetrics_Middleware_DefaultStatusCode(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := middleware.NewMetricsWithProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	handler := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// No explicit WriteHeader.
		_, _ = w.Write([]byte("response"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), collectRequestTotals(t, reader)[[2]string{"/v1/ops/health", "200"}])
}
