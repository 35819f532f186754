package sensor

import (
	"sync"
	"time"

	"github.com/justestif/go-spotify-vibe-switcher/internal/timeutil"
)

// DefaultMaxAge is how long a pushed reading stays current.
const DefaultMaxAge = 250 * time.Millisecond

// Source supplies the most recent device-motion reading.
// ok is false while no motion data is available.
type Source interface {
	Latest() (r Reading, ok bool)
}

// Latest holds the most recent pushed reading.
// It is fed by the HTTP ingest endpoint and by the serial monitor.
// A reading older than the max age counts as no data.
type Latest struct {
	clock  timeutil.Clock
	maxAge time.Duration

	mu         sync.RWMutex
	reading    Reading
	receivedAt time.Time
	ok         bool
}

// LatestOption configures a Latest.
type LatestOption func(*Latest)

// WithClock sets the clock used to stamp and age readings.
func WithClock(c timeutil.Clock) LatestOption {
	return func(l *Latest) {
		l.clock = c
	}
}

// WithMaxAge sets how long a reading stays current. Non-positive values
// keep DefaultMaxAge.
func WithMaxAge(d time.Duration) LatestOption {
	return func(l *Latest) {
		if d > 0 {
			l.maxAge = d
		}
	}
}

// NewLatest creates an empty holder.
func NewLatest(opts ...LatestOption) *Latest {
	l := &Latest{
		clock:  timeutil.RealClock{},
		maxAge: DefaultMaxAge,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Set replaces the held reading and stamps it with the current time.
func (l *Latest) Set(r Reading) {
	now := l.clock.Now()
	l.mu.Lock()
	l.reading = r
	l.receivedAt = now
	l.ok = true
	l.mu.Unlock()
}

// Latest returns the held reading. ok is false if nothing was pushed yet
// or the reading has gone stale.
func (l *Latest) Latest() (Reading, bool) {
	now := l.clock.Now()
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.ok || now.Sub(l.receivedAt) > l.maxAge {
		return Reading{}, false
	}
	return l.reading, true
}

var _ Source = (*Latest)(nil)
