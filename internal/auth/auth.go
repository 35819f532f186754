package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	spotifyapi "github.com/justestif/go-spotify-vibe-switcher/internal/spotify"
)

// DefaultRedirectURI uses explicit IPv4 loopback as required by Spotify for local development.
// See: https://developer.spotify.com/documentation/web-api/concepts/redirect-uri
const DefaultRedirectURI = "http://127.0.0.1:8080/callback"

var (
	// ErrMissingCredentials is returned when no Spotify client ID is configured.
	ErrMissingCredentials = errors.New("missing SPOTIFY_ID")

	// ErrMissingVerifier is returned when a code exchange has no PKCE verifier.
	ErrMissingVerifier = errors.New("missing PKCE verifier")
)

// Scopes are the permissions needed to read playlists and drive playback.
var Scopes = []string{
	spotifyauth.ScopeUserReadPlaybackState,
	spotifyauth.ScopeUserModifyPlaybackState,
	spotifyauth.ScopePlaylistReadPrivate,
}

// Config holds the OAuth application settings.
type Config struct {
	ClientID string
	// ClientSecret is optional; PKCE works without it.
	ClientSecret string
	RedirectURI  string

	// HTTPClient is used for token and API requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// APIBaseURL overrides the Web API endpoint. Must end with a slash.
	APIBaseURL string
}

// Authenticator runs the PKCE authorization flow and holds the resulting
// Spotify client. It is safe for concurrent use.
type Authenticator struct {
	auth       *spotifyauth.Authenticator
	cache      *TokenCache
	httpClient *http.Client
	apiOpts    []spotify.ClientOption
	logger     *slog.Logger

	mu     sync.RWMutex
	client *spotify.Client
}

// New creates an Authenticator. Tokens are persisted in cache.
// Returns ErrMissingCredentials if no client ID is set.
func New(cfg Config, cache *TokenCache, logger *slog.Logger) (*Authenticator, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = DefaultRedirectURI
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []spotifyauth.AuthenticatorOption{
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(Scopes...),
	}
	if cfg.ClientSecret != "" {
		opts = append(opts, spotifyauth.WithClientSecret(cfg.ClientSecret))
	}

	var apiOpts []spotify.ClientOption
	if cfg.APIBaseURL != "" {
		apiOpts = append(apiOpts, spotify.WithBaseURL(cfg.APIBaseURL))
	}

	return &Authenticator{
		auth:       spotifyauth.New(opts...),
		cache:      cache,
		httpClient: cfg.HTTPClient,
		apiOpts:    apiOpts,
		logger:     logger,
	}, nil
}

// AuthURL returns the Spotify consent URL for the given state and PKCE verifier.
func (a *Authenticator) AuthURL(state, verifier string) string {
	return a.auth.AuthURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the authorization code in the callback request for a token,
// caches it and installs a new client.
func (a *Authenticator) Exchange(ctx context.Context, state, verifier string, r *http.Request) error {
	if verifier == "" {
		return ErrMissingVerifier
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := a.auth.Token(ctx, state, r, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("exchanging code for token: %w", err)
	}

	if err := a.cache.Save(token); err != nil {
		// Auth succeeded; the next restart will just need a new login.
		a.logger.Warn("failed to cache token", "error", err)
	}

	a.install(token)
	return nil
}

// Restore installs a client from the cached token, if one exists and still works.
// It reports whether a client was installed.
func (a *Authenticator) Restore(ctx context.Context) (bool, error) {
	token, err := a.cache.Load()
	if errors.Is(err, ErrUnusableToken) {
		a.logger.Warn("cached token unusable, login required", "path", a.cache.Path())
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading cached token: %w", err)
	}
	if token == nil {
		return false, nil
	}

	client := a.newClient(token)

	// Verify token works; oauth2 refreshes it if expired.
	if _, err := client.CurrentUser(ctx); err != nil {
		a.logger.Warn("cached token invalid, login required", "error", err)
		return false, nil
	}

	if refreshed, err := client.Token(); err == nil && refreshed.AccessToken != token.AccessToken {
		if err := a.cache.Save(refreshed); err != nil {
			a.logger.Warn("failed to cache refreshed token", "error", err)
		}
	}

	a.mu.Lock()
	a.client = client
	a.mu.Unlock()
	return true, nil
}

// Client returns the current Spotify client, if the user is logged in.
func (a *Authenticator) Client() (*spotify.Client, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client, a.client != nil
}

// Player returns a playback client for the logged-in user.
func (a *Authenticator) Player() (*spotifyapi.Client, bool) {
	client, ok := a.Client()
	if !ok {
		return nil, false
	}
	return spotifyapi.New(client), true
}

// Logout forgets the current client and removes the cached token.
func (a *Authenticator) Logout() error {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
	return a.cache.Delete()
}

func (a *Authenticator) install(token *oauth2.Token) {
	client := a.newClient(token)
	a.mu.Lock()
	a.client = client
	a.mu.Unlock()
}

// newClient builds an API client whose token refreshes go through the
// configured HTTP client. The context outlives any single request.
func (a *Authenticator) newClient(token *oauth2.Token) *spotify.Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, a.httpClient)
	return spotify.New(a.auth.Client(ctx, token), a.apiOpts...)
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateVerifier creates a PKCE code verifier.
func GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}
