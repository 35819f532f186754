// Package weather resolves device coordinates to a coarse weather condition.
package weather

import "strings"

// Condition is an OpenWeatherMap weather group ("main" field).
type Condition string

// Weather groups reported by OpenWeatherMap.
const (
	Unknown      Condition = "Unknown"
	Clear        Condition = "Clear"
	Clouds       Condition = "Clouds"
	Rain         Condition = "Rain"
	Drizzle      Condition = "Drizzle"
	Thunderstorm Condition = "Thunderstorm"
	Snow         Condition = "Snow"
	Mist         Condition = "Mist"
	Smoke        Condition = "Smoke"
	Haze         Condition = "Haze"
	Dust         Condition = "Dust"
	Fog          Condition = "Fog"
	Sand         Condition = "Sand"
	Ash          Condition = "Ash"
	Squall       Condition = "Squall"
	Tornado      Condition = "Tornado"
)

var knownConditions = []Condition{
	Clear, Clouds, Rain, Drizzle, Thunderstorm, Snow, Mist,
	Smoke, Haze, Dust, Fog, Sand, Ash, Squall, Tornado,
}

// ParseCondition normalizes a weather group name, ignoring case and
// surrounding whitespace. Unrecognized names map to Unknown.
func ParseCondition(s string) Condition {
	s = strings.TrimSpace(s)
	for _, c := range knownConditions {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return Unknown
}

// IsRainLike reports whether the condition counts as rainy for mood selection.
func (c Condition) IsRainLike() bool {
	switch c {
	case Rain, Drizzle, Thunderstorm:
		return true
	default:
		return false
	}
}
