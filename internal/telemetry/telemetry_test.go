package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusview/nimbus/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.False(t, provider.Enabled())

	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	always := telemetry.Sampler(0).Description()
	assert.Contains(t, always, "AlwaysOnSampler")
	assert.Equal(t, always, telemetry.Sampler(1).Description())
	assert.Equal(t, always, telemetry.Sampler(-0.5).Description())

	assert.Contains(t, telemetry.Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
