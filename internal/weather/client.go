package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const userAgent = "spotify-vibe-switcher/1.0"

// ErrNoConditions is returned when the response carries no weather entries.
var ErrNoConditions = errors.New("weather response has no conditions")

// Client is an OpenWeatherMap current-weather client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client. A nil httpClient gets a 10s timeout client.
func NewClient(cfg *Config, httpClient *http.Client) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		baseURL:    base,
	}, nil
}

// currentResponse is the subset of the current-weather payload we read.
type currentResponse struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Name string `json:"name"`
}

// apiError is the OpenWeatherMap error payload. Cod is a string or number.
type apiError struct {
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

// Current returns the condition of the first weather entry at loc.
func (c *Client) Current(ctx context.Context, loc Location) (Condition, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(loc.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(loc.Lon, 'f', -1, 64)},
		"appid": {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Unknown, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Unknown, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Unknown, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return Unknown, fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.Message)
		}
		return Unknown, fmt.Errorf("API error %d", resp.StatusCode)
	}

	var cr currentResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return Unknown, fmt.Errorf("parsing weather response: %w", err)
	}
	if len(cr.Weather) == 0 {
		return Unknown, ErrNoConditions
	}

	return ParseCondition(cr.Weather[0].Main), nil
}
