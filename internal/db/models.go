package db

import (
	"time"

	"github.com/google/uuid"
)

// SwitchRecord is one attempted playlist switch.
type SwitchRecord struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Mood       string    `json:"mood" db:"mood"`
	PlaylistID string    `json:"playlist_id" db:"playlist_id"`
	TrackID    string    `json:"track_id,omitempty" db:"track_id"`
	Outcome    string    `json:"outcome" db:"outcome"`
	Error      string    `json:"error,omitempty" db:"error"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
