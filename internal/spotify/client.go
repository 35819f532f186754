// Package spotify provides a wrapper around the Spotify Web API playback endpoints.
package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// maxItemsPerPage is the largest page the playlist items endpoint returns.
const maxItemsPerPage = 100

// ErrNoActiveDevice is returned when the user has no active playback device.
var ErrNoActiveDevice = errors.New("no active playback device")

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// Device describes a Spotify Connect playback device.
type Device struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Volume int    `json:"volume"`
}

// ActiveDevice returns the device currently controlling playback.
func (c *Client) ActiveDevice(ctx context.Context) (*Device, error) {
	state, err := c.api.PlayerState(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting player state: %w", err)
	}
	if state == nil || state.Device.ID == "" {
		return nil, ErrNoActiveDevice
	}
	return &Device{
		ID:     state.Device.ID.String(),
		Name:   state.Device.Name,
		Type:   state.Device.Type,
		Volume: int(state.Device.Volume),
	}, nil
}

// PlaylistTrackIDs returns the track IDs on the first page of a playlist.
// Local files and podcast episodes are skipped.
func (c *Client) PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(maxItemsPerPage))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist items: %w", err)
	}
	return trackIDs(page.Items), nil
}

// Enqueue appends a track to the end of the user's playback queue.
func (c *Client) Enqueue(ctx context.Context, trackID string) error {
	if err := c.api.QueueSong(ctx, spotify.ID(trackID)); err != nil {
		return fmt.Errorf("queueing track %s: %w", trackID, err)
	}
	return nil
}

// SkipToNext skips to the next track in the queue.
func (c *Client) SkipToNext(ctx context.Context) error {
	if err := c.api.Next(ctx); err != nil {
		return fmt.Errorf("skipping to next track: %w", err)
	}
	return nil
}

// trackIDs extracts playable track IDs from playlist items.
func trackIDs(items []spotify.PlaylistItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsLocal || item.Track.Track == nil {
			continue
		}
		if id := item.Track.Track.ID.String(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
