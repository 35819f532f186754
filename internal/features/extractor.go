package features

import (
	"slices"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/justestif/go-spotify-vibe-switcher/internal/sensor"
	"github.com/justestif/go-spotify-vibe-switcher/internal/timeutil"
)

// DefaultWindowSize is how far back the sliding window reaches.
const DefaultWindowSize = 5 * time.Second

// Extractor keeps a time-bounded window per stream and computes
// feature vectors over it.
type Extractor struct {
	mu      sync.Mutex
	clock   timeutil.Clock
	size    time.Duration
	windows [2][]sensor.Sample // indexed by sensor.Stream
}

// NewExtractor creates an Extractor. A non-positive size uses DefaultWindowSize.
func NewExtractor(clock timeutil.Clock, size time.Duration) *Extractor {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Extractor{clock: clock, size: size}
}

// Record appends sample to the stream's window, then drops every sample
// not newer than now minus the window size.
func (e *Extractor) Record(s sensor.Stream, sample sensor.Sample) {
	if s != sensor.Accel && s != sensor.Gyro {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.windows[s] = append(e.windows[s], sample)
	e.trim(e.clock.Now())
}

// RecordReading records both streams of r stamped with the current time.
func (e *Extractor) RecordReading(r sensor.Reading) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	e.windows[sensor.Accel] = append(e.windows[sensor.Accel], r.Sample(sensor.Accel, now))
	e.windows[sensor.Gyro] = append(e.windows[sensor.Gyro], r.Sample(sensor.Gyro, now))
	e.trim(now)
}

// Len returns the number of samples inside the window for a stream.
func (e *Extractor) Len(s sensor.Stream) int {
	if s != sensor.Accel && s != sensor.Gyro {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.trim(e.clock.Now())
	return len(e.windows[s])
}

// Current computes the feature vector over the samples inside the window.
// Empty windows yield zero means and variances.
func (e *Extractor) Current() Vector {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A quiet sensor must not keep stale samples alive.
	e.trim(e.clock.Now())

	accel := e.windows[sensor.Accel]
	gyro := e.windows[sensor.Gyro]

	var v Vector
	v.MeanAccelX, v.VarAccelX = axisStats(accel, axisX)
	v.MeanAccelY, v.VarAccelY = axisStats(accel, axisY)
	v.MeanAccelZ, v.VarAccelZ = axisStats(accel, axisZ)
	v.MeanGyroX, v.VarGyroX = axisStats(gyro, axisX)
	v.MeanGyroY, v.VarGyroY = axisStats(gyro, axisY)
	v.MeanGyroZ, v.VarGyroZ = axisStats(gyro, axisZ)
	return v
}

// trim must be called with e.mu held.
func (e *Extractor) trim(now time.Time) {
	cutoff := now.Add(-e.size)
	for i := range e.windows {
		e.windows[i] = slices.DeleteFunc(e.windows[i], func(s sensor.Sample) bool {
			return !s.At.After(cutoff)
		})
	}
}

type axis func(sensor.Sample) float64

func axisX(s sensor.Sample) float64 { return s.X }
func axisY(s sensor.Sample) float64 { return s.Y }
func axisZ(s sensor.Sample) float64 { return s.Z }

// axisStats returns the mean and population variance of one axis.
func axisStats(samples []sensor.Sample, get axis) (mean, variance float64) {
	if len(samples) == 0 {
		return 0, 0
	}

	data := make(stats.Float64Data, len(samples))
	for i, s := range samples {
		data[i] = get(s)
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return 0, 0
	}
	variance, err = stats.PopulationVariance(data)
	if err != nil {
		return mean, 0
	}
	return mean, variance
}
