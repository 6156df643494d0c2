package handler_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/screen"
	"github.com/nimbusview/nimbus/internal/weather"
)

var testLogger = zerolog.New(io.Discard)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, key string) (location.Location, error) {
	if !location.IsKnown(key) {
		return location.Location{}, location.ErrUnknownLocation
	}
	name, ok := location.PresetName(key)
	if !ok {
		name = "Amsterdam"
	}
	return location.Location{Key: key, Name: name, Latitude: 52.37, Longitude: 4.89}, nil
}

// stubFetcher returns snap, or err when set.
type stubFetcher struct {
	mu    sync.Mutex
	snap  weather.Snapshot
	err   error
	calls []weather.Query
}

func (f *stubFetcher) Fetch(_ context.Context, q weather.Query) (weather.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if f.err != nil {
		return weather.Snapshot{}, f.err
	}
	return f.snap, nil
}

func (f *stubFetcher) queries() []weather.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]weather.Query(nil), f.calls...)
}

func rainySnapshot() weather.Snapshot {
	return weather.Snapshot{
		City:                   "Amsterdam",
		TemperatureC:           18.3,
		ConditionMain:          "Rain",
		ConditionDescription:   "light rain",
		HumidityPct:            82,
		SunriseEpoch:           time.Date(2025, 8, 18, 5, 53, 0, 0, time.UTC).Unix(),
		SunsetEpoch:            time.Date(2025, 8, 18, 19, 41, 0, 0, time.UTC).Unix(),
		PrecipitationChancePct: 50,
		UVIndex:                weather.DefaultUVIndex,
		UVIsDefault:            true,
		AirQualityIndex:        2,
		FetchedAt:              time.Date(2025, 8, 18, 14, 0, 0, 0, time.UTC),
	}
}

// startMachine runs a machine until the test ends.
func startMachine(t *testing.T, fetcher screen.Fetcher) *screen.Machine {
	t.Helper()

	m := screen.New(screen.Config{
		Resolver: stubResolver{},
		Fetcher:  fetcher,
		TimeZone: time.UTC,
		Clock:    func() time.Time { return time.Date(2025, 8, 18, 14, 30, 0, 0, time.UTC) },
		Logger:   testLogger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-m.Done()
	})

	return m
}

// stoppedMachine returns a machine whose Run has already returned.
func stoppedMachine(t *testing.T) *screen.Machine {
	t.Helper()

	m := screen.New(screen.Config{
		Resolver: stubResolver{},
		Fetcher:  &stubFetcher{},
		Logger:   testLogger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = m.Run(ctx)

	return m
}

func waitForPhase(t *testing.T, m *screen.Machine, phase screen.Phase) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.State().Lifecycle.Phase == phase
	}, time.Second, 5*time.Millisecond)
}

func jsonRequest(method, path, body string) *http.Request {
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}
