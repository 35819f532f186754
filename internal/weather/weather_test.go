package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in       string
		want     Condition
		rainLike bool
	}{
		{"Rain", Rain, true},
		{"drizzle", Drizzle, true},
		{" THUNDERSTORM ", Thunderstorm, true},
		{"Clear", Clear, false},
		{"Clouds", Clouds, false},
		{"Snow", Snow, false},
		{"Meteor shower", Unknown, false},
		{"", Unknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseCondition(tt.in)
			if got != tt.want {
				t.Errorf("ParseCondition(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got.IsRainLike() != tt.rainLike {
				t.Errorf("%q.IsRainLike() = %v, want %v", got, got.IsRainLike(), tt.rainLike)
			}
		})
	}
}

func TestStaticLocation(t *testing.T) {
	s := NewStaticLocation(nil)

	if _, err := s.Location(); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("Location() error = %v, want ErrUnknownLocation", err)
	}

	if err := s.Update(Location{Lat: 91, Lon: 0}); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("Update() error = %v, want ErrInvalidLocation", err)
	}

	want := Location{Lat: 47.6, Lon: -122.3}
	if err := s.Update(want); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := s.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if got != want {
		t.Errorf("Location() = %+v, want %+v", got, want)
	}
}

func TestNewStaticLocation_CopiesInput(t *testing.T) {
	loc := &Location{Lat: 1, Lon: 2}
	s := NewStaticLocation(loc)
	loc.Lat = 50

	got, err := s.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if got.Lat != 1 {
		t.Errorf("Location().Lat = %v, want 1", got.Lat)
	}
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	if _, err := NewClient(&Config{}, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("NewClient() error = %v, want ErrMissingAPIKey", err)
	}
	if _, err := NewClient(nil, nil); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("NewClient(nil) error = %v, want ErrMissingAPIKey", err)
	}
}

func TestClient_Current(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    Condition
		wantErr bool
		errIs   error
	}{
		{
			name:   "rain",
			status: http.StatusOK,
			body:   `{"weather":[{"id":500,"main":"Rain","description":"light rain"}],"name":"Seattle"}`,
			want:   Rain,
		},
		{
			name:   "first entry wins",
			status: http.StatusOK,
			body:   `{"weather":[{"main":"Clear"},{"main":"Thunderstorm"}]}`,
			want:   Clear,
		},
		{
			name:    "no entries",
			status:  http.StatusOK,
			body:    `{"weather":[]}`,
			want:    Unknown,
			wantErr: true,
			errIs:   ErrNoConditions,
		},
		{
			name:    "invalid key",
			status:  http.StatusUnauthorized,
			body:    `{"cod":401,"message":"Invalid API key."}`,
			want:    Unknown,
			wantErr: true,
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `{"weather":`,
			want:    Unknown,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("lat") != "47.6" || q.Get("lon") != "-122.3" {
					t.Errorf("unexpected coordinates: %s", r.URL.RawQuery)
				}
				if q.Get("appid") != "test-key" {
					t.Errorf("appid = %q, want test-key", q.Get("appid"))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(&Config{APIKey: "test-key", BaseURL: server.URL}, server.Client())
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}

			got, err := client.Current(context.Background(), Location{Lat: 47.6, Lon: -122.3})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Current() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.errIs != nil && !errors.Is(err, tt.errIs) {
				t.Errorf("Current() error = %v, want %v", err, tt.errIs)
			}
			if got != tt.want {
				t.Errorf("Current() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_CurrentIncludesAPIMessage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"cod":"429","message":"rate limited"}`))
	}))
	defer server.Close()

	client, err := NewClient(&Config{APIKey: "k", BaseURL: server.URL}, server.Client())
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Current(context.Background(), Location{})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Current() error = %v, want message from API", err)
	}
	// No retries.
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}
