package engine

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-vibe-switcher/internal/classifier"
	"github.com/justestif/go-spotify-vibe-switcher/internal/playback"
	"github.com/justestif/go-spotify-vibe-switcher/internal/weather"
)

// recordingPlayer serves fixed playlists and records every call in order.
type recordingPlayer struct {
	mu     sync.Mutex
	tracks map[string][]string
	calls  []string
}

func (p *recordingPlayer) PlaylistTrackIDs(_ context.Context, playlistID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "fetch "+playlistID)
	return p.tracks[playlistID], nil
}

func (p *recordingPlayer) Enqueue(_ context.Context, trackID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "enqueue "+trackID)
	return nil
}

func (p *recordingPlayer) SkipToNext(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "skip")
	return nil
}

func (p *recordingPlayer) takeCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := p.calls
	p.calls = nil
	return calls
}

func TestClassifyTick_SwitchesPlaylistsThroughController(t *testing.T) {
	const (
		calm = "1hNnTVPxdcjwb86RIiihnk"
		hype = "6CKEggKfRsvHzxnvrAjRDg"
	)
	player := &recordingPlayer{tracks: map[string][]string{
		calm: {"calm1"},
		hype: {"hype1"},
	}}

	f := newFixture(10)
	f.classifier.activity = classifier.Stationary
	f.weather.cond = weather.Clear

	controller := playback.NewController(
		playback.PlayerProviderFunc(func() (playback.Player, bool) { return player, true }),
		playback.WithClock(f.clock),
		playback.WithRand(rand.New(rand.NewPCG(1, 2))),
	)
	deps := f.deps()
	deps.Switcher = controller
	s := New(deps)
	ctx := context.Background()

	require.NoError(t, s.WeatherTick(ctx))

	// Stationary on a clear morning.
	require.NoError(t, s.ClassifyTick(ctx))
	assert.Equal(t, []string{"fetch " + calm, "enqueue calm1", "skip"}, player.takeCalls())
	assert.Equal(t, calm, s.Status().Playback.CurrentPlaylistID)

	// Same context again: nothing to do.
	require.NoError(t, s.ClassifyTick(ctx))
	assert.Empty(t, player.takeCalls())

	// Starts running.
	f.classifier.activity = classifier.Running
	require.NoError(t, s.ClassifyTick(ctx))
	assert.Equal(t, []string{"fetch " + hype, "enqueue hype1", "skip"}, player.takeCalls())

	st := s.Status()
	assert.Equal(t, classifier.Running, st.Activity)
	assert.Equal(t, hype, st.Playback.CurrentPlaylistID)
	assert.Equal(t, "hype1", st.Playback.LastTrackID)
	assert.Empty(t, st.LastError)
}

func TestClassifyTick_RetryPendingIsQuiet(t *testing.T) {
	player := &recordingPlayer{tracks: map[string][]string{}}

	f := newFixture(10)
	f.classifier.activity = classifier.Stationary
	controller := playback.NewController(
		playback.PlayerProviderFunc(func() (playback.Player, bool) { return player, true }),
		playback.WithClock(f.clock),
	)
	deps := f.deps()
	deps.Switcher = controller
	s := New(deps)
	ctx := context.Background()

	// Every default playlist is empty here, so the first switch fails.
	err := s.ClassifyTick(ctx)
	require.ErrorIs(t, err, playback.ErrEmptyPlaylist)
	assert.Len(t, player.takeCalls(), 1)

	// The next tick waits out the backoff without calling Spotify.
	require.NoError(t, s.ClassifyTick(ctx))
	assert.Empty(t, player.takeCalls())
}
