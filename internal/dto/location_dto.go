package dto

type PlaceResponse struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Resolved is false when the name is a fallback rather than a geocoder result.
	Resolved bool `json:"resolved"`
}

type WeatherResponse struct {
	TemperatureC float64 `json:"temperature_c"`
	Temperature  string  `json:"temperature"`
	Condition    string  `json:"condition"`
	Emoji        string  `json:"emoji"`
	WeatherCode  int     `json:"weather_code"`
	// Estimated marks the fixed fallback served when the weather API failed.
	Estimated bool `json:"estimated"`
}

type HomeResponse struct {
	Profile *ProfileResponse `json:"profile"`
	Place   string           `json:"place"`
	Weather *WeatherResponse `json:"weather,omitempty"`
}
