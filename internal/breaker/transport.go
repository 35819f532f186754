// Package breaker routes outbound HTTP calls through a circuit breaker so
// a failing upstream is not polled every tick.
package breaker

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Settings configures a breaker.
type Settings struct {
	Name string
	// MaxConsecutiveFailures trips the breaker once exceeded.
	MaxConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	Logger      *slog.Logger
}

// DefaultSettings returns the settings used for upstream APIs.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:                   name,
		MaxConsecutiveFailures: 5,
		OpenTimeout:            30 * time.Second,
	}
}

// Transport is an http.RoundTripper guarded by a circuit breaker.
// Transport errors, 5xx and 429 responses count as failures. Failed
// responses are still returned to the caller unchanged.
type Transport struct {
	next    http.RoundTripper
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// NewTransport wraps next. A nil next uses http.DefaultTransport.
func NewTransport(next http.RoundTripper, s Settings) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := s.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = DefaultSettings(s.Name).MaxConsecutiveFailures
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Transport{next: next, breaker: cb}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.breaker.Execute(func() (*http.Response, error) {
		r, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
			return r, fmt.Errorf("upstream returned %d", r.StatusCode)
		}
		return r, nil
	})

	// Status failures carry a response the caller should still see.
	if err != nil && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.breaker.Name(), err)
	}
	return resp, nil
}

// State reports the breaker state.
func (t *Transport) State() gobreaker.State {
	return t.breaker.State()
}

// Client returns a shallow copy of base whose transport goes through a
// new breaker. A nil base starts from a client with a 10s timeout.
func Client(base *http.Client, s Settings) *http.Client {
	c := &http.Client{Timeout: 10 * time.Second}
	if base != nil {
		cp := *base
		c = &cp
	}
	c.Transport = NewTransport(c.Transport, s)
	return c
}
