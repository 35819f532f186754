// Package classifier maps feature vectors to activity labels.
package classifier

import "strings"

// Activity is the motion state predicted from a feature window.
type Activity int

const (
	// Unknown covers any label the rule table does not recognize.
	Unknown Activity = iota
	Stationary
	Walking
	Running
)

// String returns the model label for the activity.
func (a Activity) String() string {
	switch a {
	case Stationary:
		return "stationary"
	case Walking:
		return "walking"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// ParseActivity normalizes a model label. Matching ignores case and
// surrounding whitespace; anything unrecognized is Unknown.
func ParseActivity(label string) Activity {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "stationary":
		return Stationary
	case "walking":
		return Walking
	case "running":
		return Running
	default:
		return Unknown
	}
}

// MarshalText encodes the activity as its label.
func (a Activity) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
