package models

// DeviceLocationRequest is the body of PUT /v1/device/location. Lat and Lon
// are omitted when the device has no fix.
type DeviceLocationRequest struct {
	Permission string   `json:"permission"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// Validate checks the request and returns field errors.
func (r *DeviceLocationRequest) Validate() []FieldError {
	var errs []FieldError

	switch r.Permission {
	case "granted", "denied", "undetermined":
	case "":
		errs = append(errs, FieldError{Field: "permission", Message: "permission is required", Code: "REQUIRED"})
	default:
		errs = append(errs, FieldError{Field: "permission", Message: "must be granted, denied or undetermined", Code: "INVALID"})
	}

	if (r.Lat == nil) != (r.Lon == nil) {
		errs = append(errs, FieldError{Field: "lat", Message: "lat and lon must be sent together", Code: "INCOMPLETE"})
		return errs
	}
	if r.Lat != nil && (*r.Lat < -90 || *r.Lat > 90) {
		errs = append(errs, FieldError{Field: "lat", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE"})
	}
	if r.Lon != nil && (*r.Lon < -180 || *r.Lon > 180) {
		errs = append(errs, FieldError{Field: "lon", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE"})
	}

	return errs
}

// DeviceLocation echoes what the platform now holds. ResolvedName is set
// once a load has named the device position.
type DeviceLocation struct {
	Permission   string   `json:"permission"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	ResolvedName string   `json:"resolvedName,omitempty"`
}
