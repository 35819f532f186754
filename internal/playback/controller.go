// Package playback switches the user's Spotify queue to the playlist for a mood.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/justestif/go-spotify-vibe-switcher/internal/mood"
	"github.com/justestif/go-spotify-vibe-switcher/internal/timeutil"
)

var (
	// ErrNotAuthenticated is returned when there is no logged-in Spotify user.
	ErrNotAuthenticated = errors.New("not authenticated with Spotify")

	// ErrEmptyPlaylist is returned when a playlist has no playable tracks.
	ErrEmptyPlaylist = errors.New("playlist has no playable tracks")

	// ErrRetryPending is returned while a playlist that just failed to
	// switch is waiting out its backoff.
	ErrRetryPending = errors.New("playlist switch backing off")
)

// Retry backoff bounds after a failed switch.
const (
	DefaultRetryBackoff    = 5 * time.Second
	DefaultMaxRetryBackoff = 2 * time.Minute
)

// Player is the subset of the Spotify API the controller drives.
type Player interface {
	PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error)
	Enqueue(ctx context.Context, trackID string) error
	SkipToNext(ctx context.Context) error
}

// PlayerProvider returns the player for the logged-in user, if any.
type PlayerProvider interface {
	Player() (Player, bool)
}

// PlayerProviderFunc adapts a function to PlayerProvider.
type PlayerProviderFunc func() (Player, bool)

// Player calls f.
func (f PlayerProviderFunc) Player() (Player, bool) { return f() }

// Journal records attempted switches.
type Journal interface {
	RecordSwitch(ctx context.Context, s Switch) error
}

// Outcome classifies how a switch attempt ended.
type Outcome string

const (
	OutcomeSwitched      Outcome = "switched"
	OutcomeFetchFailed   Outcome = "fetch_failed"
	OutcomeEmptyPlaylist Outcome = "empty_playlist"
	OutcomeEnqueueFailed Outcome = "enqueue_failed"
	OutcomeSkipFailed    Outcome = "skip_failed"
)

// Switch describes one attempted playlist switch.
type Switch struct {
	Mood       mood.Mood
	PlaylistID string
	TrackID    string
	Outcome    Outcome
	Err        error
	At         time.Time
}

// State is a snapshot of the controller's playback bookkeeping.
type State struct {
	CurrentPlaylistID string    `json:"current_playlist_id"`
	PendingPlaylistID string    `json:"pending_playlist_id,omitempty"`
	LastTrackID       string    `json:"last_track_id,omitempty"`
	LastSwitchAt      time.Time `json:"last_switch_at,omitzero"`
	LastError         string    `json:"last_error,omitempty"`
	// RetryPlaylistID is the playlist that last failed to switch. It is not
	// attempted again before RetryAfter.
	RetryPlaylistID   string    `json:"retry_playlist_id,omitempty"`
	RetryAfter        time.Time `json:"retry_after,omitzero"`
	Failures          int       `json:"failures,omitempty"`
}

// Result reports what a SyncPlaylist call did.
type Result struct {
	Mood       mood.Mood
	PlaylistID string
	TrackID    string
	// Switched is false when the playlist was already current.
	Switched bool
}

// Controller moves playback to the playlist for the current mood.
// Calls to SyncPlaylist are serialized; State never waits on a switch in flight.
type Controller struct {
	players    PlayerProvider
	playlists  mood.Playlists
	policy     PromotionPolicy
	rng        *rand.Rand
	journal    Journal
	clock      timeutil.Clock
	logger     *slog.Logger
	backoff    time.Duration
	maxBackoff time.Duration

	switching sync.Mutex

	mu    sync.Mutex
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithPlaylists sets the mood to playlist table.
func WithPlaylists(p mood.Playlists) Option {
	return func(c *Controller) {
		c.playlists = p
	}
}

// WithPolicy sets the promotion policy.
func WithPolicy(p PromotionPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithRand sets the random source used to pick tracks.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) {
		c.rng = r
	}
}

// WithJournal records every attempted switch to j.
func WithJournal(j Journal) Option {
	return func(c *Controller) {
		c.journal = j
	}
}

// WithClock sets the clock used to timestamp switches.
func WithClock(clock timeutil.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithRetryBackoff sets the delay before a failed playlist is tried again.
// The delay doubles on each consecutive failure up to maxDelay.
// Non-positive values keep the defaults.
func WithRetryBackoff(initial, maxDelay time.Duration) Option {
	return func(c *Controller) {
		if initial > 0 {
			c.backoff = initial
		}
		if maxDelay > 0 {
			c.maxBackoff = maxDelay
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// NewController creates a Controller that plays through players.
func NewController(players PlayerProvider, opts ...Option) *Controller {
	c := &Controller{
		players:    players,
		playlists:  mood.DefaultPlaylists(),
		policy:     PromoteOnSuccess,
		clock:      timeutil.RealClock{},
		logger:     slog.Default(),
		backoff:    DefaultRetryBackoff,
		maxBackoff: DefaultMaxRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxBackoff < c.backoff {
		c.maxBackoff = c.backoff
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return c
}

// State returns a copy of the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SyncPlaylist makes sure the playlist for m is playing. If it already is,
// no requests are made. Otherwise a random track from the playlist is queued
// and playback skips to it. A playlist that failed is not retried until its
// backoff has passed; until then ErrRetryPending is returned.
func (c *Controller) SyncPlaylist(ctx context.Context, m mood.Mood) (Result, error) {
	c.switching.Lock()
	defer c.switching.Unlock()

	playlistID := c.playlists.Lookup(m)
	res := Result{Mood: m, PlaylistID: playlistID}

	c.mu.Lock()
	st := c.state
	c.mu.Unlock()

	if playlistID == st.CurrentPlaylistID {
		return res, nil
	}
	if playlistID == st.RetryPlaylistID && c.clock.Now().Before(st.RetryAfter) {
		return res, fmt.Errorf("%w: playlist %s until %s",
			ErrRetryPending, playlistID, st.RetryAfter.Format(time.TimeOnly))
	}

	player, ok := c.players.Player()
	if !ok {
		return res, ErrNotAuthenticated
	}

	c.mu.Lock()
	c.state.PendingPlaylistID = playlistID
	c.mu.Unlock()

	trackID, outcome, err := c.switchTo(ctx, player, playlistID)
	res.TrackID = trackID

	now := c.clock.Now()
	c.record(ctx, Switch{
		Mood:       m,
		PlaylistID: playlistID,
		TrackID:    trackID,
		Outcome:    outcome,
		Err:        err,
		At:         now,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil || c.policy == PromoteOnAttempt {
		c.state.CurrentPlaylistID = playlistID
	}
	c.state.PendingPlaylistID = ""

	if err != nil {
		c.state.LastError = err.Error()
		if c.policy == PromoteOnSuccess {
			c.scheduleRetry(playlistID, now)
		}
		c.logger.Warn("playlist switch failed",
			"mood", m.String(),
			"playlist", playlistID,
			"outcome", string(outcome),
			"retry_after", c.state.RetryAfter,
			"error", err,
		)
		return res, err
	}

	c.state.LastTrackID = trackID
	c.state.LastSwitchAt = now
	c.state.LastError = ""
	c.state.RetryPlaylistID = ""
	c.state.RetryAfter = time.Time{}
	c.state.Failures = 0
	res.Switched = true

	c.logger.Info("switched playlist",
		"mood", m.String(),
		"playlist", playlistID,
		"track", trackID,
	)
	return res, nil
}

// scheduleRetry backs off playlistID, doubling the delay on consecutive
// failures of the same playlist. c.mu must be held.
func (c *Controller) scheduleRetry(playlistID string, now time.Time) {
	if c.state.RetryPlaylistID == playlistID {
		c.state.Failures++
	} else {
		c.state.RetryPlaylistID = playlistID
		c.state.Failures = 1
	}

	delay := c.backoff
	for i := 1; i < c.state.Failures && delay < c.maxBackoff; i++ {
		delay *= 2
	}
	c.state.RetryAfter = now.Add(min(delay, c.maxBackoff))
}

// switchTo fetches, enqueues and skips in order, stopping at the first failure.
func (c *Controller) switchTo(ctx context.Context, player Player, playlistID string) (string, Outcome, error) {
	ids, err := player.PlaylistTrackIDs(ctx, playlistID)
	if err != nil {
		return "", OutcomeFetchFailed, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}
	if len(ids) == 0 {
		return "", OutcomeEmptyPlaylist, fmt.Errorf("playlist %s: %w", playlistID, ErrEmptyPlaylist)
	}

	trackID := ids[c.rng.IntN(len(ids))]

	if err := player.Enqueue(ctx, trackID); err != nil {
		return trackID, OutcomeEnqueueFailed, fmt.Errorf("enqueueing track: %w", err)
	}
	if err := player.SkipToNext(ctx); err != nil {
		return trackID, OutcomeSkipFailed, fmt.Errorf("skipping to queued track: %w", err)
	}
	return trackID, OutcomeSwitched, nil
}

func (c *Controller) record(ctx context.Context, s Switch) {
	if c.journal == nil {
		return
	}
	if err := c.journal.RecordSwitch(ctx, s); err != nil {
		c.logger.Warn("failed to journal switch", "error", err)
	}
}
