package location

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ResolverConfig holds configuration for the location resolver.
type ResolverConfig struct {
	// Platform provides permission and position fixes (required).
	Platform Platform

	// Geocoder names the device position (optional).
	// If nil, the device location is named "Current Location".
	Geocoder Geocoder

	// Logger for resolver operations.
	Logger zerolog.Logger
}

// Resolver turns a selection key into a Location. The device location is
// resolved at most once per session; later selections reuse it.
type Resolver struct {
	platform Platform
	geocoder Geocoder
	logger   zerolog.Logger

	group singleflight.Group

	mu      sync.Mutex
	gen     uint64
	current *Location
}

// NewResolver creates a new location resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		platform: cfg.Platform,
		geocoder: cfg.Geocoder,
		logger:   cfg.Logger,
	}
}

// Resolve dispatches on key: the device location or a preset.
func (r *Resolver) Resolve(ctx context.Context, key string) (Location, error) {
	if key == CurrentLocationKey {
		return r.ResolveCurrent(ctx)
	}
	return r.ResolvePreset(key)
}

// ResolvePreset looks key up in the preset table. It never defaults.
func (r *Resolver) ResolvePreset(key string) (Location, error) {
	p, ok := lookupPreset(key)
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrUnknownLocation, key)
	}

	return Location{
		Key:       p.key,
		Name:      p.name,
		Latitude:  p.lat,
		Longitude: p.lon,
		Source:    SourcePreset,
	}, nil
}

// ResolveCurrent asks for permission, reads one position fix and names it.
// A denial is returned as ErrPermissionDenied; the caller decides whether to
// ask again. Concurrent callers share one resolve.
func (r *Resolver) ResolveCurrent(ctx context.Context) (Location, error) {
	if loc, ok := r.Cached(); ok {
		return loc, nil
	}

	ch := r.group.DoChan(CurrentLocationKey, func() (any, error) {
		return r.resolveCurrent(ctx)
	})

	select {
	case <-ctx.Done():
		return Location{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Location{}, res.Err
		}
		loc, _ := res.Val.(Location)
		return loc, nil
	}
}

// resolveCurrent does the platform and geocoder I/O without holding r.mu.
// The result is cached only if Forget was not called in the meantime.
func (r *Resolver) resolveCurrent(ctx context.Context) (Location, error) {
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()

	permission, err := r.platform.RequestPermission(ctx)
	if err != nil {
		return Location{}, fmt.Errorf("%w: requesting permission: %w", ErrUnavailable, err)
	}
	if permission != PermissionGranted {
		r.logger.Info().
			Str("permission", string(permission)).
			Msg("device location permission not granted")
		return Location{}, ErrPermissionDenied
	}

	coords, err := r.platform.CurrentCoordinates(ctx)
	if err != nil {
		return Location{}, fmt.Errorf("reading coordinates: %w", err)
	}

	loc := Location{
		Key:       CurrentLocationKey,
		Name:      r.placeName(ctx, coords),
		Latitude:  coords.Lat,
		Longitude: coords.Lon,
		Source:    SourceCurrent,
	}

	r.mu.Lock()
	if r.gen == gen {
		r.current = &loc
	}
	r.mu.Unlock()

	r.logger.Debug().
		Float64("lat", coords.Lat).
		Float64("lon", coords.Lon).
		Str("name", loc.Name).
		Msg("resolved device location")

	return loc, nil
}

// placeName reverse-geocodes coords. Failures fall back to the literal name.
func (r *Resolver) placeName(ctx context.Context, coords Coordinates) string {
	if r.geocoder == nil {
		return fallbackName
	}

	place, err := r.geocoder.ReverseGeocode(ctx, coords.Lat, coords.Lon)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Float64("lat", coords.Lat).
			Float64("lon", coords.Lon).
			Msg("reverse geocoding failed")
		return fallbackName
	}

	return place.DisplayName()
}

// Cached returns the session's device location, if resolved.
func (r *Resolver) Cached() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Location{}, false
	}
	return *r.current, true
}

// Forget drops the cached device location so the next resolve starts over.
// A resolve already in flight still returns to its callers but is not cached.
func (r *Resolver) Forget() {
	r.mu.Lock()
	r.gen++
	r.current = nil
	r.mu.Unlock()

	r.group.Forget(CurrentLocationKey)
}
