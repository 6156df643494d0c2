// Package location resolves where the screen should show weather for: the
// device position or one of a fixed set of preset places.
package location

import (
	"context"
	"errors"
)

// Location errors.
var (
	// ErrPermissionDenied is returned when the user refuses device location access.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrUnknownLocation is returned for a selection key outside the preset table.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrUnavailable is returned when the device cannot report its coordinates.
	ErrUnavailable = errors.New("device location unavailable")
)

// CurrentLocationKey selects the device position instead of a preset.
const CurrentLocationKey = "Current Location"

// fallbackName is shown when reverse geocoding yields no usable place name.
const fallbackName = "Current Location"

// Source tells whether a Location came from the device or the preset table.
type Source string

const (
	SourceCurrent Source = "current"
	SourcePreset  Source = "preset"
)

// Location is a resolved place. It is immutable once built; a location change
// replaces it whole.
type Location struct {
	// Key is the selection key that produced this location.
	Key       string
	Name      string
	Latitude  float64
	Longitude float64
	Source    Source
}

// Coordinates is a device position fix.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Place is a reverse-geocoding result. Any field may be empty.
type Place struct {
	City    string
	Region  string
	Country string
}

// DisplayName picks city, then region, then country, then a literal fallback.
func (p Place) DisplayName() string {
	switch {
	case p.City != "":
		return p.City
	case p.Region != "":
		return p.Region
	case p.Country != "":
		return p.Country
	default:
		return fallbackName
	}
}

// Permission is the outcome of a device location permission request.
type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
	PermissionUndetermined Permission = "undetermined"
)

// Platform is the device collaborator that owns location permission and
// position fixes.
type Platform interface {
	// RequestPermission asks for foreground location access.
	RequestPermission(ctx context.Context) (Permission, error)

	// CurrentCoordinates returns a single position fix.
	CurrentCoordinates(ctx context.Context) (Coordinates, error)
}

// Geocoder turns coordinates into a place record.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}
