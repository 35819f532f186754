package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/justestif/go-spotify-vibe-switcher/internal/playback"
)

// DefaultRecentLimit is the number of switches Recent returns when limit <= 0.
const DefaultRecentLimit = 20

// SwitchRepository handles switch journal operations.
type SwitchRepository struct {
	q querier
}

// RecordSwitch inserts a playback switch attempt.
func (r *SwitchRepository) RecordSwitch(ctx context.Context, s playback.Switch) error {
	return r.Insert(ctx, newSwitchRecord(s))
}

// Insert inserts a switch record.
func (r *SwitchRepository) Insert(ctx context.Context, rec SwitchRecord) error {
	query := `
		INSERT INTO switches (id, mood, playlist_id, track_id, outcome, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.Exec(ctx, query,
		rec.ID,
		rec.Mood,
		rec.PlaylistID,
		rec.TrackID,
		rec.Outcome,
		rec.Error,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting switch: %w", err)
	}
	return nil
}

// Recent returns the most recent switches, newest first.
func (r *SwitchRepository) Recent(ctx context.Context, limit int) ([]SwitchRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query := `
		SELECT id, mood, playlist_id, track_id, outcome, error, created_at
		FROM switches
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying switches: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[SwitchRecord])
	if err != nil {
		return nil, fmt.Errorf("scanning switches: %w", err)
	}
	return records, nil
}

func newSwitchRecord(s playback.Switch) SwitchRecord {
	rec := SwitchRecord{
		ID:         uuid.New(),
		Mood:       s.Mood.String(),
		PlaylistID: s.PlaylistID,
		TrackID:    s.TrackID,
		Outcome:    string(s.Outcome),
		CreatedAt:  s.At,
	}
	if s.Err != nil {
		rec.Error = s.Err.Error()
	}
	return rec
}

var _ playback.Journal = (*SwitchRepository)(nil)
