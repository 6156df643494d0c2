package models

// Weather is a normalized snapshot for an ad-hoc city lookup.
type Weather struct {
	City                   string    `json:"city"`
	TemperatureC           float64   `json:"temperatureC"`
	TemperatureDisplay     string    `json:"temperatureDisplay"`
	ConditionMain          string    `json:"conditionMain"`
	ConditionDescription   string    `json:"conditionDescription"`
	IconKey                string    `json:"iconKey"`
	HumidityPct            int       `json:"humidityPct"`
	PrecipitationChancePct int       `json:"precipitationChancePct"`
	PressureHpa            float64   `json:"pressureHpa"`
	VisibilityM            int       `json:"visibilityM"`
	WindSpeedMs            float64   `json:"windSpeedMs"`
	UVIndex                float64   `json:"uvIndex"`
	UVIsDefault            bool      `json:"uvIsDefault"`
	AirQualityIndex        int       `json:"airQualityIndex"`
	AirQualityIsDefault    bool      `json:"airQualityIsDefault"`
	Sunrise                Timestamp `json:"sunrise"`
	Sunset                 Timestamp `json:"sunset"`
	FetchedAt              Timestamp `json:"fetchedAt"`
}
