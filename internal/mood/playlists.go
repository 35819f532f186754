package mood

// Playlists maps each mood to a Spotify playlist ID.
type Playlists map[Mood]string

// DefaultPlaylists returns the built-in playlist table.
func DefaultPlaylists() Playlists {
	return Playlists{
		HypeEnergizing:   "6CKEggKfRsvHzxnvrAjRDg",
		EmoRock:          "7wg3juMUK73gUJEEqqWc9Z",
		BrightHappyChill: "1xII5ZLXOb6Sys0kSWgB7R",
		CalmMellowChill:  "1hNnTVPxdcjwb86RIiihnk",
		SleepMode:        "4UpGbmuWWzD8KQZ8RlHUs7",
	}
}

// Lookup returns the playlist for m. Moods missing from the table fall
// back to the Emo Rock playlist, then to the built-in Emo Rock ID.
func (p Playlists) Lookup(m Mood) string {
	if id, ok := p[m]; ok && id != "" {
		return id
	}
	if id, ok := p[EmoRock]; ok && id != "" {
		return id
	}
	return DefaultPlaylists()[EmoRock]
}

// WithOverrides returns a copy of p with non-empty overrides applied.
func (p Playlists) WithOverrides(overrides map[Mood]string) Playlists {
	out := make(Playlists, len(p))
	for m, id := range p {
		out[m] = id
	}
	for m, id := range overrides {
		if id != "" {
			out[m] = id
		}
	}
	return out
}
