package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-spotify-vibe-switcher/internal/mood"
	"github.com/justestif/go-spotify-vibe-switcher/internal/playback"
)

type fakeQuerier struct {
	sql  string
	args []any
	err  error
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestRecordSwitch(t *testing.T) {
	at := time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC)
	q := &fakeQuerier{}
	repo := &SwitchRepository{q: q}

	err := repo.RecordSwitch(context.Background(), playback.Switch{
		Mood:       mood.SleepMode,
		PlaylistID: "4UpGbmuWWzD8KQZ8RlHUs7",
		TrackID:    "t1",
		Outcome:    playback.OutcomeSkipFailed,
		Err:        errors.New("restricted device"),
		At:         at,
	})
	require.NoError(t, err)

	require.Len(t, q.args, 7)
	id, ok := q.args[0].(uuid.UUID)
	require.True(t, ok, "first argument should be a uuid")
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, []any{"Sleep mode", "4UpGbmuWWzD8KQZ8RlHUs7", "t1", "skip_failed", "restricted device", at}, q.args[1:])
	assert.Contains(t, q.sql, "INSERT INTO switches")
}

func TestRecordSwitch_Error(t *testing.T) {
	q := &fakeQuerier{err: errors.New("connection refused")}
	repo := &SwitchRepository{q: q}

	err := repo.RecordSwitch(context.Background(), playback.Switch{Mood: mood.EmoRock})
	require.Error(t, err)
	assert.ErrorIs(t, err, q.err)
}

func TestNewSwitchRecord_Success(t *testing.T) {
	rec := newSwitchRecord(playback.Switch{Mood: mood.HypeEnergizing, Outcome: playback.OutcomeSwitched})

	assert.Equal(t, "Hype & Energizing", rec.Mood)
	assert.Equal(t, "switched", rec.Outcome)
	assert.Empty(t, rec.Error)
}

// TestSwitchRepository_Postgres runs against a real database when
// TEST_DATABASE_URL is set.
func TestSwitchRepository_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := New(ctx, url)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, database.EnsureSchema(ctx))

	repo := database.Switches()
	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.RecordSwitch(ctx, playback.Switch{
		Mood:       mood.CalmMellowChill,
		PlaylistID: "1hNnTVPxdcjwb86RIiihnk",
		TrackID:    "calm1",
		Outcome:    playback.OutcomeSwitched,
		At:         at,
	}))

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "calm1", recent[0].TrackID)
	assert.True(t, at.Equal(recent[0].CreatedAt))
}
