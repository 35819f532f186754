// Package engine runs the sampling, classification and weather loops that
// drive playlist switching.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-spotify-vibe-switcher/internal/classifier"
	"github.com/justestif/go-spotify-vibe-switcher/internal/features"
	"github.com/justestif/go-spotify-vibe-switcher/internal/mood"
	"github.com/justestif/go-spotify-vibe-switcher/internal/playback"
	"github.com/justestif/go-spotify-vibe-switcher/internal/sensor"
	"github.com/justestif/go-spotify-vibe-switcher/internal/timeutil"
	"github.com/justestif/go-spotify-vibe-switcher/internal/weather"
)

// Default loop intervals.
const (
	DefaultSampleInterval   = time.Second / 60
	DefaultClassifyInterval = time.Second
	DefaultWeatherInterval  = 10 * time.Minute

	// switchTimeout bounds one playlist switch, all requests included.
	switchTimeout = 10 * time.Second
)

// ErrNoWeather is returned by WeatherTick when no weather service is configured.
var ErrNoWeather = errors.New("no weather service configured")

// WeatherService reports the current conditions at a location.
type WeatherService interface {
	Current(ctx context.Context, loc weather.Location) (weather.Condition, error)
}

// Switcher moves playback to a mood's playlist.
type Switcher interface {
	SyncPlaylist(ctx context.Context, m mood.Mood) (playback.Result, error)
	State() playback.State
}

// Deps holds everything the scheduler needs. Classifier and Weather may be
// nil; the matching ticks are then skipped.
type Deps struct {
	Clock      timeutil.Clock
	Source     sensor.Source
	Extractor  *features.Extractor
	Classifier classifier.Classifier
	Weather    WeatherService
	Location   weather.LocationProvider
	Switcher   Switcher
	Logger     *slog.Logger

	SampleInterval   time.Duration
	ClassifyInterval time.Duration
	WeatherInterval  time.Duration
}

// Status is a snapshot of the latest context and playback decisions.
type Status struct {
	Activity  classifier.Activity `json:"activity"`
	Mood      *mood.Mood          `json:"mood"`
	Condition weather.Condition   `json:"condition"`
	Hour      int                 `json:"hour"`
	Features  features.Vector     `json:"features"`
	Playback  playback.State      `json:"playback"`
	Window    WindowStatus        `json:"window"`
	UpdatedAt time.Time           `json:"updated_at,omitzero"`
	LastError string              `json:"last_error,omitempty"`
}

// WindowStatus reports how many samples each stream currently holds.
type WindowStatus struct {
	Accel int `json:"accel"`
	Gyro  int `json:"gyro"`
}

// Scheduler runs the polling loops.
type Scheduler struct {
	deps   Deps
	logger *slog.Logger

	mu        sync.Mutex
	condition weather.Condition
	status    Status
}

// New creates a Scheduler. Zero intervals use the defaults.
func New(deps Deps) *Scheduler {
	if deps.Clock == nil {
		deps.Clock = timeutil.RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SampleInterval <= 0 {
		deps.SampleInterval = DefaultSampleInterval
	}
	if deps.ClassifyInterval <= 0 {
		deps.ClassifyInterval = DefaultClassifyInterval
	}
	if deps.WeatherInterval <= 0 {
		deps.WeatherInterval = DefaultWeatherInterval
	}

	return &Scheduler{
		deps:      deps,
		logger:    deps.Logger,
		condition: weather.Unknown,
		status:    Status{Activity: classifier.Unknown, Condition: weather.Unknown},
	}
}

// Run runs the loops until ctx is cancelled. The weather loop also runs
// once immediately.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.every(ctx, "sample", s.deps.SampleInterval, false, func(context.Context) error {
			s.SampleTick()
			return nil
		})
	})
	g.Go(func() error {
		return s.every(ctx, "classify", s.deps.ClassifyInterval, false, s.ClassifyTick)
	})
	if s.deps.Weather != nil {
		g.Go(func() error {
			return s.every(ctx, "weather", s.deps.WeatherInterval, true, s.WeatherTick)
		})
	} else {
		s.logger.Info("weather disabled, condition stays unknown")
	}

	return g.Wait()
}

// every calls tick on each interval until ctx is done. Ticks in one loop
// never overlap.
func (s *Scheduler) every(ctx context.Context, name string, interval time.Duration, immediate bool, tick func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if immediate {
		s.runTick(ctx, name, tick)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.runTick(ctx, name, tick)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context, name string, tick func(context.Context) error) {
	err := tick(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.status.LastError = err.Error()
	s.mu.Unlock()

	// Expected while idle or logged elsewhere.
	level := slog.LevelWarn
	if errors.Is(err, classifier.ErrNoModel) ||
		errors.Is(err, playback.ErrNotAuthenticated) ||
		errors.Is(err, errSwitch) {
		level = slog.LevelDebug
	}
	s.logger.Log(ctx, level, "tick failed", "loop", name, "error", err)
}

// errSwitch marks playback failures the controller has already logged.
var errSwitch = errors.New("playlist switch failed")

// SampleTick copies the source's latest reading into the feature windows.
// It is a no-op when the source has no current reading.
func (s *Scheduler) SampleTick() {
	r, ok := s.deps.Source.Latest()
	if !ok {
		return
	}
	s.deps.Extractor.RecordReading(r)
}

// ClassifyTick predicts the activity, decides the mood and syncs playback.
// When there is no model or inference fails the mood is left unchanged.
func (s *Scheduler) ClassifyTick(ctx context.Context) error {
	if s.deps.Classifier == nil {
		return classifier.ErrNoModel
	}

	vec := s.deps.Extractor.Current()
	activity, err := s.deps.Classifier.Classify(ctx, vec)
	if err != nil {
		return fmt.Errorf("classifying features: %w", err)
	}

	now := s.deps.Clock.Now()

	s.mu.Lock()
	cond := s.condition
	m := mood.Decide(cond, now.Hour(), activity)
	s.status.Activity = activity
	s.status.Mood = &m
	s.status.Condition = cond
	s.status.Hour = now.Hour()
	s.status.Features = vec
	s.status.UpdatedAt = now
	s.mu.Unlock()

	syncCtx, cancel := context.WithTimeout(ctx, switchTimeout)
	defer cancel()
	if _, err := s.deps.Switcher.SyncPlaylist(syncCtx, m); err != nil {
		// Waiting out a failed switch; LastError keeps the failure.
		if errors.Is(err, playback.ErrRetryPending) {
			return nil
		}
		if errors.Is(err, playback.ErrNotAuthenticated) {
			return err
		}
		return fmt.Errorf("%w: %w", errSwitch, err)
	}

	s.mu.Lock()
	s.status.LastError = ""
	s.mu.Unlock()
	return nil
}

// WeatherTick refreshes the weather condition for the current location.
// On failure the last known condition is kept.
func (s *Scheduler) WeatherTick(ctx context.Context) error {
	if s.deps.Weather == nil {
		return ErrNoWeather
	}

	loc, err := s.deps.Location.Location()
	if err != nil {
		return fmt.Errorf("getting location: %w", err)
	}

	cond, err := s.deps.Weather.Current(ctx, loc)
	if err != nil {
		return fmt.Errorf("fetching weather: %w", err)
	}

	s.mu.Lock()
	changed := cond != s.condition
	s.condition = cond
	s.status.Condition = cond
	s.mu.Unlock()

	if changed {
		s.logger.Info("weather updated", "condition", string(cond))
	}
	return nil
}

// Status returns a snapshot of the scheduler's state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()

	if st.Mood != nil {
		m := *st.Mood
		st.Mood = &m
	}
	if s.deps.Switcher != nil {
		st.Playback = s.deps.Switcher.State()
	}
	st.Window = WindowStatus{
		Accel: s.deps.Extractor.Len(sensor.Accel),
		Gyro:  s.deps.Extractor.Len(sensor.Gyro),
	}
	return st
}
