package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/justestif/go-spotify-vibe-switcher/internal/auth"
	"github.com/justestif/go-spotify-vibe-switcher/internal/db"
	"github.com/justestif/go-spotify-vibe-switcher/internal/engine"
	"github.com/justestif/go-spotify-vibe-switcher/internal/sensor"
	"github.com/justestif/go-spotify-vibe-switcher/internal/spotify"
	"github.com/justestif/go-spotify-vibe-switcher/internal/weather"
)

const (
	stateCookie    = "oauth_state"
	verifierCookie = "oauth_verifier"
	cookieMaxAge   = 300 // 5 minutes

	maxBodyBytes  = 64 << 10
	deviceTimeout = 3 * time.Second
)

// Account is the Spotify login state.
type Account interface {
	AuthURL(state, verifier string) string
	Exchange(ctx context.Context, state, verifier string, r *http.Request) error
	Logout() error
	Player() (*spotify.Client, bool)
}

// StatusSource reports the scheduler status.
type StatusSource interface {
	Status() engine.Status
}

// SwitchLister lists journaled playlist switches.
type SwitchLister interface {
	Recent(ctx context.Context, limit int) ([]db.SwitchRecord, error)
}

// LocationUpdater accepts location updates from the device.
type LocationUpdater interface {
	Update(loc weather.Location) error
}

// HandlersConfig holds handler dependencies. Samples, Location and Switches
// may be nil when the matching feature is disabled.
type HandlersConfig struct {
	Account  Account
	Status   StatusSource
	Samples  *sensor.Latest
	Location LocationUpdater
	Switches SwitchLister
	Logger   *slog.Logger
}

// Handlers contains HTTP handlers for the application.
type Handlers struct {
	account  Account
	status   StatusSource
	samples  *sensor.Latest
	location LocationUpdater
	switches SwitchLister
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg HandlersConfig) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		account:  cfg.Account,
		status:   cfg.Status,
		samples:  cfg.Samples,
		location: cfg.Location,
		switches: cfg.Switches,
		logger:   logger,
	}
}

// statusResponse is the body of GET /api/status.
type statusResponse struct {
	engine.Status
	Authenticated bool            `json:"authenticated"`
	Device        *spotify.Device `json:"device,omitempty"`
}

// Status reports the current context, mood and playback state (GET /api/status).
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Status: h.status.Status()}

	if player, ok := h.account.Player(); ok {
		resp.Authenticated = true

		ctx, cancel := context.WithTimeout(r.Context(), deviceTimeout)
		defer cancel()
		device, err := player.ActiveDevice(ctx)
		if err != nil {
			h.logger.Debug("no active device", "error", err)
		} else {
			resp.Device = device
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Login initiates the Spotify PKCE flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := auth.GenerateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}
	verifier := auth.GenerateVerifier()

	// Store state and verifier for the callback
	setShortCookie(w, stateCookie, state)
	setShortCookie(w, verifierCookie, verifier)

	http.Redirect(w, r, h.account.AuthURL(state, verifier), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookie)
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != state.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}
	verifier, err := r.Cookie(verifierCookie)
	if err != nil {
		http.Error(w, "Missing verifier cookie", http.StatusBadRequest)
		return
	}

	clearCookie(w, stateCookie)
	clearCookie(w, verifierCookie)

	// Check for error from Spotify
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("Spotify auth error: %s", errMsg), http.StatusBadRequest)
		return
	}

	if err := h.account.Exchange(r.Context(), state.Value, verifier.Value, r); err != nil {
		h.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		return
	}

	h.logger.Info("logged in to Spotify")
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout forgets the Spotify login (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.account.Logout(); err != nil {
		h.logger.Error("logout failed", "error", err)
		http.Error(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// sampleRequest is the body of POST /api/samples.
type sampleRequest struct {
	Accel []float64 `json:"accel"`
	Gyro  []float64 `json:"gyro"`
}

// Samples accepts a motion reading pushed by the phone (POST /api/samples).
func (h *Handlers) Samples(w http.ResponseWriter, r *http.Request) {
	if h.samples == nil {
		writeError(w, http.StatusConflict, "sample upload is disabled for this sensor source")
		return
	}

	var req sampleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Accel) != 3 || len(req.Gyro) != 3 {
		writeError(w, http.StatusBadRequest, "accel and gyro must each have 3 values")
		return
	}

	var reading sensor.Reading
	copy(reading.Accel[:], req.Accel)
	copy(reading.Gyro[:], req.Gyro)
	h.samples.Set(reading)

	w.WriteHeader(http.StatusNoContent)
}

// locationRequest is the body of POST /api/location.
type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// Location updates the device location used for weather (POST /api/location).
func (h *Handlers) Location(w http.ResponseWriter, r *http.Request) {
	if h.location == nil {
		writeError(w, http.StatusConflict, "location updates are disabled")
		return
	}

	var req locationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	loc := weather.Location{Lat: *req.Lat, Lon: *req.Lon}
	if err := h.location.Update(loc); err != nil {
		if errors.Is(err, weather.ErrInvalidLocation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update location")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Switches lists recent playlist switches (GET /api/switches?limit=N).
func (h *Handlers) Switches(w http.ResponseWriter, r *http.Request) {
	if h.switches == nil {
		writeError(w, http.StatusNotFound, "switch journal is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.switches.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing switches", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list switches")
		return
	}
	if records == nil {
		records = []db.SwitchRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cookieMaxAge,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
