package weather

import (
	"strings"
	"time"
)

// IconKey identifies a display icon. The asset layer maps it to an image.
type IconKey string

const (
	IconSunnyDay      IconKey = "sunny-day"
	IconSunnyNight    IconKey = "sunny-night"
	IconPartlyCloudy  IconKey = "partly-cloudy"
	IconOvercastDay   IconKey = "overcast-day"
	IconOvercastNight IconKey = "overcast-night"
	IconRainDay       IconKey = "rain-day"
	IconRainNight     IconKey = "rain-night"
	IconStorm         IconKey = "storm"
	IconSnow          IconKey = "snow"
	IconFog           IconKey = "fog"
)

// IsNight reports whether t falls in the night window [20:00, 06:00) of its
// own time zone.
func IsNight(t time.Time) bool {
	hour := t.Hour()
	return hour >= 20 || hour < 6
}

// IconKeyFor maps a provider condition to an icon key. Overcast is the fallback
// for anything unrecognized.
func IconKeyFor(conditionMain, description string, night bool) IconKey {
	desc := strings.ToLower(description)

	switch strings.ToLower(conditionMain) {
	case "clear":
		return dayNight(IconSunnyDay, IconSunnyNight, night)
	case "clouds":
		if containsAny(desc, "few", "scattered") {
			return IconPartlyCloudy
		}
		return dayNight(IconOvercastDay, IconOvercastNight, night)
	case "rain", "drizzle":
		return dayNight(IconRainDay, IconRainNight, night)
	case "thunderstorm":
		return IconStorm
	case "snow":
		return IconSnow
	case "mist", "fog", "haze", "smoke", "dust", "sand":
		return IconFog
	default:
		return dayNight(IconOvercastDay, IconOvercastNight, night)
	}
}

func dayNight(day, night IconKey, isNight bool) IconKey {
	if isNight {
		return night
	}
	return day
}

// EstimatePrecipitationChancePct guesses a chance of precipitation from the
// condition alone. It is a heuristic for provider tiers that do not report a
// probability of precipitation and must not be presented as a forecast.
func EstimatePrecipitationChancePct(conditionMain, description string) int {
	desc := strings.ToLower(description)

	switch strings.ToLower(conditionMain) {
	case "rain":
		switch {
		case strings.Contains(desc, "heavy"):
			return 90
		case strings.Contains(desc, "moderate"):
			return 70
		case strings.Contains(desc, "light"):
			return 50
		default:
			return 80
		}
	case "drizzle":
		return 40
	case "thunderstorm":
		return 95
	case "snow":
		return 85
	case "clouds":
		switch {
		case strings.Contains(desc, "overcast"):
			return 30
		case strings.Contains(desc, "broken"):
			return 20
		default:
			return 10
		}
	case "mist", "fog":
		return 15
	default:
		return 5
	}
}

// UVBand categorizes a UV index reading.
type UVBand string

const (
	UVLow      UVBand = "Low"
	UVModerate UVBand = "Moderate"
	UVHigh     UVBand = "High"
	UVVeryHigh UVBand = "Very High"
	UVExtreme  UVBand = "Extreme"
)

// ClassifyUV returns the band for a UV index.
func ClassifyUV(uvIndex float64) UVBand {
	switch {
	case uvIndex <= 2:
		return UVLow
	case uvIndex <= 5:
		return UVModerate
	case uvIndex <= 7:
		return UVHigh
	case uvIndex <= 10:
		return UVVeryHigh
	default:
		return UVExtreme
	}
}

// AQIBand categorizes the provider's 1..5 air quality index.
type AQIBand string

const (
	AQIGood     AQIBand = "Good"
	AQIFair     AQIBand = "Fair"
	AQIModerate AQIBand = "Moderate"
	AQIPoor     AQIBand = "Poor"
	AQIVeryPoor AQIBand = "Very Poor"
	AQIUnknown  AQIBand = "Unknown"
)

var aqiBands = map[int]AQIBand{
	1: AQIGood,
	2: AQIFair,
	3: AQIModerate,
	4: AQIPoor,
	5: AQIVeryPoor,
}

// ClassifyAQI returns the band for an air quality index; anything outside 1..5
// is AQIUnknown.
func ClassifyAQI(aqi int) AQIBand {
	if band, ok := aqiBands[aqi]; ok {
		return band
	}
	return AQIUnknown
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
