package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/justestif/go-spotify-vibe-switcher/internal/features"
)

const userAgent = "spotify-vibe-switcher/1.0"

// Remote calls an HTTP inference endpoint.
// The request body is the feature vector keyed by features.Names;
// the response is {"label": "..."}.
type Remote struct {
	url        string
	httpClient *http.Client
}

// NewRemote creates a Remote classifier. A nil httpClient gets a 5s timeout client.
func NewRemote(url string, httpClient *http.Client) *Remote {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Remote{url: url, httpClient: httpClient}
}

type predictResponse struct {
	Label string `json:"label"`
}

// Classify posts v and parses the returned label.
func (r *Remote) Classify(ctx context.Context, v features.Vector) (Activity, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Unknown, fmt.Errorf("encoding features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return Unknown, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Unknown, fmt.Errorf("%w: executing request: %v", ErrInference, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Unknown, fmt.Errorf("%w: reading response body: %v", ErrInference, err)
	}

	if resp.StatusCode != http.StatusOK {
		return Unknown, fmt.Errorf("%w: status %d", ErrInference, resp.StatusCode)
	}

	var pr predictResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return Unknown, fmt.Errorf("%w: parsing response: %v", ErrInference, err)
	}

	return ParseActivity(pr.Label), nil
}

var _ Classifier = (*Remote)(nil)
