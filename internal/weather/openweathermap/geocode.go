package openweathermap

import (
	"context"
	"errors"
	"net/url"

	"github.com/nimbusview/nimbus/internal/location"
)

// DefaultGeoURL is the OpenWeatherMap geocoding API base URL.
const DefaultGeoURL = "https://api.openweathermap.org/geo/1.0"

// ErrNoPlace is returned when reverse geocoding finds nothing.
var ErrNoPlace = errors.New("no place found for coordinates")

// Geocoder reverse-geocodes through the OpenWeatherMap geocoding API.
type Geocoder struct {
	client *Client
	geoURL string
}

// NewGeocoder creates a geocoder sharing c's key and transport. An empty
// geoURL selects DefaultGeoURL.
func NewGeocoder(c *Client, geoURL string) *Geocoder {
	if geoURL == "" {
		geoURL = DefaultGeoURL
	}
	return &Geocoder{client: c, geoURL: geoURL}
}

// ReverseGeocode returns the nearest named place.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (location.Place, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", "1")

	var places []reversePlace
	if err := g.client.get(ctx, g.geoURL+"/reverse", params, &places); err != nil {
		return location.Place{}, err
	}
	if len(places) == 0 {
		return location.Place{}, ErrNoPlace
	}

	p := places[0]
	return location.Place{
		City:    p.Name,
		Region:  p.State,
		Country: p.Country,
	}, nil
}

type reversePlace struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// Ensure Geocoder implements location.Geocoder interface.
var _ location.Geocoder = (*Geocoder)(nil)
