// Package weather holds the normalized weather model and the pure
// derivations the screen needs from it.
package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	// ErrNetwork covers transport failures, timeouts and non-success HTTP statuses.
	ErrNetwork = errors.New("weather provider network error")

	// ErrParse is returned when a provider response lacks a required field.
	ErrParse = errors.New("weather provider response malformed")
)

// Placeholders used when the provider tier does not report a value.
const (
	DefaultUVIndex         = 4.0
	DefaultAirQualityIndex = 3
)

// Snapshot is one fully-resolved weather reading for a single place and instant.
// A Snapshot is never merged with another one; a newer fetch replaces it whole.
type Snapshot struct {
	// City is the place name reported by the provider, if any.
	City string

	// Temperature in Celsius. Display conversion happens at render time.
	TemperatureC float64

	ConditionMain        string
	ConditionDescription string

	// HumidityPct is in [0,100].
	HumidityPct int

	SunriseEpoch int64
	SunsetEpoch  int64

	PressureHpa float64
	VisibilityM int
	WindSpeedMs float64

	// PrecipitationChancePct is an estimate derived from the condition,
	// not a forecast probability. See EstimatePrecipitationChancePct.
	PrecipitationChancePct int

	UVIndex     float64
	UVIsDefault bool

	// AirQualityIndex is the 1..5 provider index, DefaultAirQualityIndex
	// when AirQualityIsDefault is set.
	AirQualityIndex     int
	AirQualityIsDefault bool

	ObservedAt time.Time
	FetchedAt  time.Time
}

// Query selects what to fetch: either a coordinate pair or a city name.
type Query struct {
	Lat  float64
	Lon  float64
	City string

	hasCoordinates bool
}

// ByCoordinates builds a coordinate query.
func ByCoordinates(lat, lon float64) Query {
	return Query{Lat: lat, Lon: lon, hasCoordinates: true}
}

// ByCity builds a city-name query.
func ByCity(city string) Query {
	return Query{City: city}
}

// HasCoordinates reports whether the query is a coordinate lookup.
func (q Query) HasCoordinates() bool {
	return q.hasCoordinates
}
