package weather

import (
	"fmt"
	"math"
)

// Unit is a display temperature unit.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// ParseUnit accepts "C"/"F" as well as the long names used by the settings menu.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "C", "c", "Celsius", "celsius":
		return Celsius, nil
	case "F", "f", "Fahrenheit", "fahrenheit":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// ToDisplay converts a Celsius reading to a whole number in the given unit.
// math.Round rounds half away from zero.
func ToDisplay(tempC float64, unit Unit) int {
	if unit == Fahrenheit {
		return int(math.Round(tempC*9/5 + 32))
	}
	return int(math.Round(tempC))
}

// FormatTemperature renders a reading as shown on screen, e.g. "18°C".
func FormatTemperature(tempC float64, unit Unit) string {
	if unit != Fahrenheit {
		unit = Celsius
	}
	return fmt.Sprintf("%d°%s", ToDisplay(tempC, unit), unit)
}
