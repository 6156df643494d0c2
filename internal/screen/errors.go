package screen

import (
	"errors"

	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/weather"
)

// ErrorKind classifies a load failure for the user.
type ErrorKind string

const (
	ErrorNone             ErrorKind = ""
	ErrorPermissionDenied ErrorKind = "permission_denied"
	ErrorNetwork          ErrorKind = "network_error"
	ErrorParse            ErrorKind = "parse_error"
	ErrorUnknownLocation  ErrorKind = "unknown_location"
)

// PermissionNotice is shown when device location access is refused.
const PermissionNotice = "Please grant location permissions to use current location feature."

// Classify maps a resolver or client error to its kind. Anything unrecognized,
// including timeouts, is a network error.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, location.ErrPermissionDenied):
		return ErrorPermissionDenied
	case errors.Is(err, location.ErrUnknownLocation):
		return ErrorUnknownLocation
	case errors.Is(err, weather.ErrParse):
		return ErrorParse
	default:
		return ErrorNetwork
	}
}
