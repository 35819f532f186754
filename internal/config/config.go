// Package config loads the vibe switcher settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/justestif/go-spotify-vibe-switcher/internal/mood"
	"github.com/justestif/go-spotify-vibe-switcher/internal/playback"
	"github.com/justestif/go-spotify-vibe-switcher/internal/weather"
)

// Sensor sources.
const (
	SensorHTTP   = "http"
	SensorSerial = "serial"
)

// Classifier kinds.
const (
	ClassifierCentroid = "centroid"
	ClassifierRemote   = "remote"
	ClassifierNone     = "none"
)

// Config holds all runtime settings.
type Config struct {
	// Spotify
	SpotifyID     string `envconfig:"SPOTIFY_ID" required:"true" validate:"required"`
	SpotifySecret string `envconfig:"SPOTIFY_SECRET"`
	RedirectURI   string `envconfig:"REDIRECT_URI" default:"http://127.0.0.1:8080/callback" validate:"required,url"`
	TokenPath     string `envconfig:"TOKEN_PATH"`

	// Server
	HTTPAddr string `envconfig:"HTTP_ADDR" default:"127.0.0.1:8080" validate:"required,hostname_port"`

	// Weather
	OpenWeatherAPIKey string   `envconfig:"OPENWEATHER_API_KEY"`
	OpenWeatherURL    string   `envconfig:"OPENWEATHER_URL" default:"https://api.openweathermap.org/data/2.5/weather" validate:"required,url"`
	Latitude          *float64 `envconfig:"LATITUDE" validate:"omitempty,gte=-90,lte=90"`
	Longitude         *float64 `envconfig:"LONGITUDE" validate:"omitempty,gte=-180,lte=180"`

	// Sensor
	SensorSource string        `envconfig:"SENSOR_SOURCE" default:"http" validate:"oneof=http serial"`
	SerialPort   string        `envconfig:"SERIAL_PORT" validate:"required_if=SensorSource serial"`
	SerialBaud   int           `envconfig:"SERIAL_BAUD" default:"115200" validate:"gt=0"`
	// SensorMaxAge is how long a reading counts as live motion data.
	SensorMaxAge time.Duration `envconfig:"SENSOR_MAX_AGE" default:"250ms" validate:"gt=0"`

	// Classifier
	Classifier    string `envconfig:"CLASSIFIER" default:"centroid" validate:"oneof=centroid remote none"`
	ModelPath     string `envconfig:"MODEL_PATH" default:"model.json" validate:"required_if=Classifier centroid"`
	ClassifierURL string `envconfig:"CLASSIFIER_URL" validate:"required_if=Classifier remote"`

	// Scheduling
	SampleInterval   time.Duration `envconfig:"SAMPLE_INTERVAL" default:"16ms" validate:"gt=0"`
	ClassifyInterval time.Duration `envconfig:"CLASSIFY_INTERVAL" default:"1s" validate:"gt=0"`
	WeatherInterval  time.Duration `envconfig:"WEATHER_INTERVAL" default:"10m" validate:"gt=0"`
	WindowSize       time.Duration `envconfig:"WINDOW_SIZE" default:"5s" validate:"gt=0"`

	// Playback
	PromotionPolicy string        `envconfig:"PROMOTION_POLICY" default:"success" validate:"oneof=success attempt"`
	RetryBackoff    time.Duration `envconfig:"RETRY_BACKOFF" default:"5s" validate:"gt=0"`
	RetryBackoffMax time.Duration `envconfig:"RETRY_BACKOFF_MAX" default:"2m" validate:"gtefield=RetryBackoff"`
	PlaylistHype    string        `envconfig:"PLAYLIST_HYPE"`
	PlaylistEmo     string        `envconfig:"PLAYLIST_EMO"`
	PlaylistBright  string        `envconfig:"PLAYLIST_BRIGHT"`
	PlaylistCalm    string        `envconfig:"PLAYLIST_CALM"`
	PlaylistSleep   string        `envconfig:"PLAYLIST_SLEEP"`

	// Storage
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrParsing indicates an environment variable could not be parsed
	// into its target type.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the configuration failed validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)

// Playlists returns the default playlist table with any PLAYLIST_* overrides.
func (c *Config) Playlists() mood.Playlists {
	return mood.DefaultPlaylists().WithOverrides(map[mood.Mood]string{
		mood.HypeEnergizing:   c.PlaylistHype,
		mood.EmoRock:          c.PlaylistEmo,
		mood.BrightHappyChill: c.PlaylistBright,
		mood.CalmMellowChill:  c.PlaylistCalm,
		mood.SleepMode:        c.PlaylistSleep,
	})
}

// Policy returns the configured promotion policy.
func (c *Config) Policy() playback.PromotionPolicy {
	p, err := playback.ParsePromotionPolicy(c.PromotionPolicy)
	if err != nil {
		return playback.PromoteOnSuccess
	}
	return p
}

// Location returns the configured fixed location, or nil if none is set.
func (c *Config) Location() *weather.Location {
	if c.Latitude == nil || c.Longitude == nil {
		return nil
	}
	return &weather.Location{Lat: *c.Latitude, Lon: *c.Longitude}
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// validateLocation requires latitude and longitude to be set together.
func (c *Config) validateLocation() error {
	if (c.Latitude == nil) != (c.Longitude == nil) {
		return fmt.Errorf("LATITUDE and LONGITUDE must be set together")
	}
	return nil
}
