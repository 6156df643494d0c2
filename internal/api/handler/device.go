package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nimbusview/nimbus/internal/api/models"
	"github.com/nimbusview/nimbus/internal/api/response"
	"github.com/nimbusview/nimbus/internal/location"
)

// DeviceResolver exposes the resolver's session cache of the device location.
type DeviceResolver interface {
	Cached() (location.Location, bool)
	Forget()
}

// DeviceHandler receives permission and position reports from the screen
// client.
type DeviceHandler struct {
	platform *location.DevicePlatform
	resolver DeviceResolver
	logger   zerolog.Logger
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(platform *location.DevicePlatform, resolver DeviceResolver, logger zerolog.Logger) *DeviceHandler {
	return &DeviceHandler{platform: platform, resolver: resolver, logger: logger}
}

// GetLocation handles GET /v1/device/location - what the platform holds and,
// once a load has resolved it, the place name shown on the screen.
func (h *DeviceHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	permission, _ := h.platform.RequestPermission(r.Context())

	out := models.DeviceLocation{Permission: string(permission)}
	if coords, err := h.platform.CurrentCoordinates(r.Context()); err == nil {
		out.Lat, out.Lon = &coords.Lat, &coords.Lon
	}
	if loc, ok := h.resolver.Cached(); ok {
		out.ResolvedName = loc.Name
	}

	response.JSON(w, r, http.StatusOK, out)
}

// ReportLocation handles PUT /v1/device/location. The cached device location
// is dropped so the next load resolves the new report.
func (h *DeviceHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceLocationRequest
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if errs := input.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation failed", errs)
		return
	}

	var coords *location.Coordinates
	if input.Lat != nil {
		coords = &location.Coordinates{Lat: *input.Lat, Lon: *input.Lon}
	}

	h.platform.Report(location.Permission(input.Permission), coords)
	h.resolver.Forget()

	h.logger.Info().
		Str("permission", input.Permission).
		Bool("has_fix", coords != nil).
		Msg("device location reported")

	response.JSON(w, r, http.StatusOK, models.DeviceLocation{
		Permission: input.Permission,
		Lat:        input.Lat,
		Lon:        input.Lon,
	})
}
