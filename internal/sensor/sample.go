// Package sensor provides inertial sample types and the sources that feed them.
package sensor

import "time"

// Stream identifies one of the two inertial signal streams.
type Stream int

const (
	// Accel is the user-acceleration stream (gravity removed), in g.
	Accel Stream = iota
	// Gyro is the rotation-rate stream, in rad/s.
	Gyro
)

// String returns the stream name.
func (s Stream) String() string {
	switch s {
	case Accel:
		return "accel"
	case Gyro:
		return "gyro"
	default:
		return "unknown"
	}
}

// Sample is one timestamped three-axis reading of a single stream.
type Sample struct {
	X, Y, Z float64
	At      time.Time
}

// Reading is one raw device-motion read: both streams at the same instant.
type Reading struct {
	Accel [3]float64 `json:"accel"`
	Gyro  [3]float64 `json:"gyro"`
}

// Sample returns the given stream of the reading as a Sample stamped at.
func (r Reading) Sample(s Stream, at time.Time) Sample {
	v := r.Accel
	if s == Gyro {
		v = r.Gyro
	}
	return Sample{X: v[0], Y: v[1], Z: v[2], At: at}
}
