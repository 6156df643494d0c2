package location

// preset is an entry of the fixed location table.
type preset struct {
	key  string
	name string
	lat  float64
	lon  float64
}

// presets is ordered as presented in the settings menu.
var presets = []preset{
	{key: "Mexico", name: "Mexico City", lat: 19.4326, lon: -99.1332},
	{key: "South Korea", name: "Seoul", lat: 37.5665, lon: 126.9780},
	{key: "United States", name: "New York", lat: 40.7128, lon: -74.0060},
	{key: "Japan", name: "Tokyo", lat: 35.6762, lon: 139.6503},
	{key: "China", name: "Beijing", lat: 39.9042, lon: 116.4074},
	{key: "United Kingdom", name: "London", lat: 51.5074, lon: -0.1278},
	{key: "Canada", name: "Ottawa", lat: 45.4215, lon: -75.6972},
	{key: "Australia", name: "Sydney", lat: -33.8688, lon: 151.2093},
}

func lookupPreset(key string) (preset, bool) {
	for _, p := range presets {
		if p.key == key {
			return p, true
		}
	}
	return preset{}, false
}

// Keys returns every selectable key, current location first.
func Keys() []string {
	keys := make([]string, 0, len(presets)+1)
	keys = append(keys, CurrentLocationKey)
	for _, p := range presets {
		keys = append(keys, p.key)
	}
	return keys
}

// IsKnown reports whether key can be selected.
func IsKnown(key string) bool {
	if key == CurrentLocationKey {
		return true
	}
	_, ok := lookupPreset(key)
	return ok
}

// PresetName returns the display name of a preset key.
func PresetName(key string) (string, bool) {
	p, ok := lookupPreset(key)
	return p.name, ok
}
