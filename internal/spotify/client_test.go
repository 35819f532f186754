package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/zmb3/spotify/v2"
)

// fakeAPI records requests and serves canned responses.
type fakeAPI struct {
	mu       sync.Mutex
	requests []string

	playlistStatus int
	playlistBody   string
	queueStatus    int
	nextStatus     int
	playerStatus   int
	playerBody     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/tracks"):
		w.WriteHeader(f.playlistStatus)
		w.Write([]byte(f.playlistBody))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/me/player/queue"):
		if got := r.URL.Query().Get("uri"); got != "spotify:track:t2" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"status":400,"message":"bad uri ` + got + `"}}`))
			return
		}
		w.WriteHeader(f.queueStatus)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/me/player/next"):
		w.WriteHeader(f.nextStatus)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/me/player"):
		w.WriteHeader(f.playerStatus)
		w.Write([]byte(f.playerBody))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"status":404,"message":"not found"}}`))
	}
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	api := spotify.New(server.Client(), spotify.WithBaseURL(server.URL+"/"))
	return New(api)
}

const playlistBody = `{
  "href": "x", "limit": 100, "offset": 0, "total": 4,
  "items": [
    {"is_local": false, "track": {"type": "track", "id": "t1", "name": "One", "uri": "spotify:track:t1"}},
    {"is_local": false, "track": {"type": "track", "id": "t2", "name": "Two", "uri": "spotify:track:t2"}},
    {"is_local": true,  "track": {"type": "track", "id": "", "name": "Local", "uri": "spotify:local:x"}},
    {"is_local": false, "track": {"type": "episode", "id": "e1", "name": "Pod", "uri": "spotify:episode:e1"}}
  ]
}`

func TestPlaylistTrackIDs(t *testing.T) {
	f := &fakeAPI{playlistStatus: http.StatusOK, playlistBody: playlistBody}
	c := newTestClient(t, f)

	ids, err := c.PlaylistTrackIDs(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("PlaylistTrackIDs() error = %v", err)
	}

	want := []string{"t1", "t2"}
	if len(ids) != len(want) {
		t.Fatalf("PlaylistTrackIDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	if len(f.requests) != 1 || f.requests[0] != "GET /playlists/pl1/tracks" {
		t.Errorf("requests = %v", f.requests)
	}
}

func TestPlaylistTrackIDs_Error(t *testing.T) {
	f := &fakeAPI{playlistStatus: http.StatusNotFound, playlistBody: `{"error":{"status":404,"message":"Not found."}}`}
	c := newTestClient(t, f)

	if _, err := c.PlaylistTrackIDs(context.Background(), "missing"); err == nil {
		t.Error("PlaylistTrackIDs() expected error for 404")
	}
}

func TestEnqueueAndSkip(t *testing.T) {
	f := &fakeAPI{queueStatus: http.StatusNoContent, nextStatus: http.StatusNoContent}
	c := newTestClient(t, f)

	if err := c.Enqueue(context.Background(), "t2"); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := c.SkipToNext(context.Background()); err != nil {
		t.Fatalf("SkipToNext() error = %v", err)
	}

	want := []string{"POST /me/player/queue", "POST /me/player/next"}
	if len(f.requests) != len(want) {
		t.Fatalf("requests = %v, want %v", f.requests, want)
	}
	for i := range want {
		if f.requests[i] != want[i] {
			t.Errorf("request[%d] = %q, want %q", i, f.requests[i], want[i])
		}
	}
}

func TestSkipToNext_Error(t *testing.T) {
	f := &fakeAPI{nextStatus: http.StatusForbidden}
	c := newTestClient(t, f)

	if err := c.SkipToNext(context.Background()); err == nil {
		t.Error("SkipToNext() expected error for 403")
	}
}

func TestActiveDevice(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantName string
		wantErr  error
	}{
		{
			name:     "active phone",
			status:   http.StatusOK,
			body:     `{"device":{"id":"d1","is_active":true,"name":"Pixel","type":"Smartphone","volume_percent":70},"is_playing":true}`,
			wantName: "Pixel",
		},
		{
			name:    "no device",
			status:  http.StatusOK,
			body:    `{"device":{"id":""}}`,
			wantErr: ErrNoActiveDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{playerStatus: tt.status, playerBody: tt.body}
			c := newTestClient(t, f)

			dev, err := c.ActiveDevice(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ActiveDevice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && dev.Name != tt.wantName {
				t.Errorf("ActiveDevice().Name = %q, want %q", dev.Name, tt.wantName)
			}
		})
	}
}

func TestTrackIDs_SkipsMissingTracks(t *testing.T) {
	items := []spotify.PlaylistItem{
		{Track: spotify.PlaylistItemTrack{Track: &spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{ID: "a"}}}},
		{Track: spotify.PlaylistItemTrack{}},
		{IsLocal: true, Track: spotify.PlaylistItemTrack{Track: &spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{ID: "b"}}}},
	}

	got := trackIDs(items)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("trackIDs() = %v, want [a]", got)
	}
}
