// Package mood fuses activity, weather and time of day into a mood category.
package mood

import (
	"github.com/justestif/go-spotify-vibe-switcher/internal/classifier"
	"github.com/justestif/go-spotify-vibe-switcher/internal/weather"
)

// Mood is one of the five playlist categories.
type Mood int

const (
	HypeEnergizing Mood = iota
	EmoRock
	BrightHappyChill
	CalmMellowChill
	SleepMode
)

// All lists every mood in declaration order.
var All = []Mood{HypeEnergizing, EmoRock, BrightHappyChill, CalmMellowChill, SleepMode}

// EveningHour is the first hour (24h clock) treated as evening.
const EveningHour = 19

// String returns the display name of the mood.
func (m Mood) String() string {
	switch m {
	case HypeEnergizing:
		return "Hype & Energizing"
	case EmoRock:
		return "Emo Rock Music"
	case BrightHappyChill:
		return "Bright Happy Chill"
	case CalmMellowChill:
		return "Calm and Mellow Chill"
	case SleepMode:
		return "Sleep mode"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the mood as its display name.
func (m Mood) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Decide picks a mood from the current context. Rules are checked in order
// and the first match wins:
//
//  1. running                 -> Hype & Energizing
//  2. rain, drizzle or storm  -> Emo Rock
//  3. walking in the evening  -> Emo Rock
//  4. walking before evening  -> Bright Happy Chill
//  5. stationary before evening -> Calm and Mellow Chill
//  6. stationary in the evening -> Sleep mode
//  7. anything else           -> Calm and Mellow Chill
func Decide(cond weather.Condition, hour int, act classifier.Activity) Mood {
	evening := hour >= EveningHour

	switch {
	case act == classifier.Running:
		return HypeEnergizing
	case cond.IsRainLike():
		return EmoRock
	case act == classifier.Walking && evening:
		return EmoRock
	case act == classifier.Walking:
		return BrightHappyChill
	case act == classifier.Stationary && !evening:
		return CalmMellowChill
	case act == classifier.Stationary:
		return SleepMode
	default:
		return CalmMellowChill
	}
}
