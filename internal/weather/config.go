package weather

import "errors"

// ErrMissingAPIKey is returned when no OpenWeatherMap API key is configured.
var ErrMissingAPIKey = errors.New("missing OpenWeatherMap API key")

// DefaultBaseURL is the OpenWeatherMap current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Config holds OpenWeatherMap API configuration.
type Config struct {
	APIKey  string
	BaseURL string
}
