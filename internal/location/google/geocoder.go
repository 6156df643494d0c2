// Package google names device positions with the Google Geocoding API.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/nimbusview/nimbus/internal/location"
)

// ErrNoResults is returned when the API knows no address for a position.
var ErrNoResults = errors.New("no address for coordinates")

// reverseFunc matches geocoder.GeocodingReverse.
type reverseFunc func(geocoder.Location) ([]geocoder.Address, error)

// Geocoder implements location.Geocoder.
type Geocoder struct {
	reverse reverseFunc
}

// NewGeocoder creates a geocoder using the given API key. The geocoder
// library keeps its key in a package variable, so it is set here once for
// the process.
func NewGeocoder(apiKey string) *Geocoder {
	geocoder.ApiKey = apiKey
	return &Geocoder{reverse: geocoder.GeocodingReverse}
}

// ReverseGeocode looks up the first address at lat/lon. The library call has
// no context support or client timeout, so it runs in its own goroutine and
// ctx only bounds the wait. A hung call strands nothing but that goroutine.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (location.Place, error) {
	type result struct {
		addresses []geocoder.Address
		err       error
	}

	done := make(chan result, 1)
	go func() {
		addresses, err := g.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
		done <- result{addresses: addresses, err: err}
	}()

	select {
	case <-ctx.Done():
		return location.Place{}, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return location.Place{}, fmt.Errorf("reverse geocoding: %w", res.err)
		}
		return toPlace(res.addresses)
	}
}

func toPlace(addresses []geocoder.Address) (location.Place, error) {
	if len(addresses) == 0 {
		return location.Place{}, ErrNoResults
	}

	a := addresses[0]
	city := a.City
	if city == "" {
		city = a.District
	}

	return location.Place{
		City:    city,
		Region:  a.State,
		Country: a.Country,
	}, nil
}

// Ensure Geocoder implements location.Geocoder interface.
var _ location.Geocoder = (*Geocoder)(nil)
