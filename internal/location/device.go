package location

import (
	"context"
	"sync"
)

// DevicePlatform is a Platform fed by the screen client, which reports its
// permission status and position over the API.
type DevicePlatform struct {
	mu         sync.RWMutex
	permission Permission
	coords     *Coordinates
}

// NewDevicePlatform creates a platform with undetermined permission and no fix.
func NewDevicePlatform() *DevicePlatform {
	return &DevicePlatform{permission: PermissionUndetermined}
}

// Report stores what the device last told us. A nil coords clears the fix.
func (d *DevicePlatform) Report(permission Permission, coords *Coordinates) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.permission = permission
	if coords == nil {
		d.coords = nil
		return
	}
	c := *coords
	d.coords = &c
}

// RequestPermission returns the last reported permission status.
func (d *DevicePlatform) RequestPermission(_ context.Context) (Permission, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.permission, nil
}

// CurrentCoordinates returns the last reported fix.
func (d *DevicePlatform) CurrentCoordinates(_ context.Context) (Coordinates, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.coords == nil {
		return Coordinates{}, ErrUnavailable
	}
	return *d.coords, nil
}

// Ensure DevicePlatform implements Platform interface.
var _ Platform = (*DevicePlatform)(nil)
