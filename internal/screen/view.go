package screen

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nimbusview/nimbus/internal/location"
	"github.com/nimbusview/nimbus/internal/timefmt"
	"github.com/nimbusview/nimbus/internal/weather"
)

// Placeholder texts shown before a location or a snapshot is available.
const (
	ResolvingLocationText = "Getting location..."
	LoadingConditionText  = "LOADING..."
)

var upperCaser = cases.Upper(language.English)

// ViewModel is everything the client renders. Every field is derived from one
// State and the display time zone.
type ViewModel struct {
	DisplayLocationName string
	Greeting            timefmt.Greeting
	TemperatureDisplay  string
	ConditionText       string
	FormattedDateTime   string
	IconKey             weather.IconKey
	SunriseText         string
	SunsetText          string
	AirQualityText      string
	UVText              string
	PrecipitationPct    int
	HumidityPct         int
	LifecycleState      Phase
	LifecycleError      ErrorKind

	Theme          Theme
	ColorblindMode bool
	TransientError ErrorKind
	Notice         string
	HasData        bool
	Revision       uint64
}

// Render derives the view model of s. A nil tz means time.Local.
func Render(s State, tz *time.Location) ViewModel {
	if tz == nil {
		tz = time.Local
	}
	now := s.Now.In(tz)

	vm := ViewModel{
		DisplayLocationName: displayLocationName(s),
		Greeting:            timefmt.GreetingFor(now),
		FormattedDateTime:   timefmt.FormatHeaderDateTime(now),
		LifecycleState:      s.Lifecycle.Phase,
		LifecycleError:      s.Lifecycle.Err,
		Theme:               s.Settings.Theme,
		ColorblindMode:      s.Settings.Colorblind,
		TransientError:      s.TransientError,
		Notice:              s.Notice,
		HasData:             s.HasData(),
		Revision:            s.Revision,
	}

	if s.Snapshot == nil {
		if s.Lifecycle.Phase.Loading() {
			vm.ConditionText = LoadingConditionText
		}
		return vm
	}

	snap := s.Snapshot
	vm.TemperatureDisplay = weather.FormatTemperature(snap.TemperatureC, s.Settings.Unit)
	vm.ConditionText = upperCaser.String(snap.ConditionDescription)
	vm.IconKey = weather.IconKeyFor(snap.ConditionMain, snap.ConditionDescription, weather.IsNight(now))
	vm.SunriseText = timefmt.FormatSunTime(snap.SunriseEpoch, tz)
	vm.SunsetText = timefmt.FormatSunTime(snap.SunsetEpoch, tz)
	vm.AirQualityText = fmt.Sprintf("%d %s", snap.AirQualityIndex, weather.ClassifyAQI(snap.AirQualityIndex))
	vm.UVText = fmt.Sprintf("%d %s", int(math.Round(snap.UVIndex)), weather.ClassifyUV(snap.UVIndex))
	vm.PrecipitationPct = snap.PrecipitationChancePct
	vm.HumidityPct = snap.HumidityPct

	return vm
}

// displayLocationName names the selected location. The device location shows
// a placeholder until it has been resolved.
func displayLocationName(s State) string {
	key := s.Settings.LocationKey
	if key != location.CurrentLocationKey {
		if name, ok := location.PresetName(key); ok {
			return name
		}
		return key
	}

	if s.Location != nil && s.Location.Key == location.CurrentLocationKey {
		return s.Location.Name
	}
	return ResolvingLocationText
}
