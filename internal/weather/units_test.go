package weather_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusview/nimbus/internal/weather"
)

func TestToDisplay_Range(t *testing.T) {
	for tenths := -1000; tenths <= 600; tenths++ {
		c := float64(tenths) / 10

		assert.Equal(t, int(math.Round(c)), weather.ToDisplay(c, weather.Celsius), "celsius %v", c)
		assert.Equal(t, int(math.Round(c*9/5+32)), weather.ToDisplay(c, weather.Fahrenheit), "fahrenheit %v", c)
	}
}

func TestToDisplay_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		tempC    float64
		unit     weather.Unit
		expected int
	}{
		{"celsius rounds down", 18.3, weather.Celsius, 18},
		{"celsius half up", 0.5, weather.Celsius, 1},
		{"celsius half away from zero", -0.5, weather.Celsius, -1},
		{"freezing in fahrenheit", 0, weather.Fahrenheit, 32},
		{"boiling in fahrenheit", 100, weather.Fahrenheit, 212},
		{"fractional fahrenheit", 18.3, weather.Fahrenheit, 65},
		{"crossover", -40, weather.Fahrenheit, -40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, weather.ToDisplay(tt.tempC, tt.unit))
		})
	}
}

func TestFormatTemperature(t *testing.T) {
	assert.Equal(t, "18°C", weather.FormatTemperature(18.3, weather.Celsius))
	assert.Equal(t, "65°F", weather.FormatTemperature(18.3, weather.Fahrenheit))
}

func TestParseUnit(t *testing.T) {
	for _, in := range []string{"C", "c", "Celsius"} {
		u, err := weather.ParseUnit(in)
		require.NoError(t, err)
		assert.Equal(t, weather.Celsius, u)
	}

	u, err := weather.ParseUnit("Fahrenheit")
	require.NoError(t, err)
	assert.Equal(t, weather.Fahrenheit, u)

	_, err = weather.ParseUnit("K")
	assert.Error(t, err)
	assert.False(t, weather.Unit("K").Valid())
}
