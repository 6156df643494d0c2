package models

// Screen is the rendered view model.
type Screen struct {
	DisplayLocationName string `json:"displayLocationName"`
	Greeting            string `json:"greeting"`
	TemperatureDisplay  string `json:"temperatureDisplay"`
	ConditionText       string `json:"conditionText"`
	FormattedDateTime   string `json:"formattedDateTime"`
	IconKey             string `json:"iconKey,omitempty"`
	SunriseText         string `json:"sunriseText,omitempty"`
	SunsetText          string `json:"sunsetText,omitempty"`
	AirQualityText      string `json:"airQualityText,omitempty"`
	UVText              string `json:"uvText,omitempty"`
	PrecipitationPct    int    `json:"precipitationPct"`
	HumidityPct         int    `json:"humidityPct"`
	LifecycleState      string `json:"lifecycleState"`
	LifecycleError      string `json:"lifecycleError,omitempty"`

	Settings ScreenSettings `json:"settings"`

	TransientError string `json:"transientError,omitempty"`
	Notice         string `json:"notice,omitempty"`
	HasData        bool   `json:"hasData"`
	Revision       uint64 `json:"revision"`
}

// ScreenSettings are the in-memory display settings.
type ScreenSettings struct {
	LocationKey    string `json:"locationKey"`
	Unit           string `json:"unit"`
	Theme          string `json:"theme"`
	ColorblindMode bool   `json:"colorblindMode"`
}

// LocationOptions lists the selectable location keys in menu order.
type LocationOptions struct {
	Items    []LocationOption `json:"items"`
	Selected string           `json:"selected"`
}

// LocationOption is one entry in the location menu.
type LocationOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// SelectLocationRequest is the body of PUT /v1/screen/location.
type SelectLocationRequest struct {
	Key string `json:"key"`
}

// SetUnitRequest is the body of PUT /v1/screen/unit.
type SetUnitRequest struct {
	Unit string `json:"unit"`
}

// SetThemeRequest is the body of PUT /v1/screen/theme.
type SetThemeRequest struct {
	Theme string `json:"theme"`
}

// SetColorblindRequest is the body of PUT /v1/screen/colorblind.
type SetColorblindRequest struct {
	Enabled *bool `json:"enabled"`
}
