// Package orbit consumes the backend's read-only track-lookup contract:
// a predicted ground track plus the sample closest to the reference
// instant, delivered wholesale per fetch. Orbit propagation itself
// happens on the backend; this package only decodes point samples.
package orbit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mamaroma/SpacePi-PolytechUniversity/internal/geo"
)

// maxBodyBytes caps track responses; a few thousand points fit well
// under this.
const maxBodyBytes = 8 << 20

// Request selects the track window. The caller requests exactly the
// window it needs; there is no pagination.
type Request struct {
	Satellite string
	At        time.Time     // reference instant; zero means "backend now"
	Window    time.Duration // total window length, centered on At
	Step      time.Duration // sampling step
}

// Snapshot is one track-lookup result.
type Snapshot struct {
	Sat     string      `json:"sat"`
	At      time.Time   `json:"at"`
	Minutes int         `json:"minutes"`
	StepSec int         `json:"step_sec"`
	Current *geo.Point  `json:"current"` // nil when the backend has no current sample
	Track   []geo.Point `json:"track"`
}

// Client fetches track snapshots from the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the given API base URL
// (e.g. "http://localhost:8000").
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchTrack performs the track lookup.
func (c *Client) FetchTrack(ctx context.Context, r Request) (*Snapshot, error) {
	q := url.Values{}
	q.Set("sat", r.Satellite)
	if !r.At.IsZero() {
		q.Set("at", r.At.UTC().Format(time.RFC3339))
	}
	if r.Window > 0 {
		q.Set("minutes", strconv.Itoa(int(r.Window.Minutes())))
	}
	if r.Step > 0 {
		q.Set("step_sec", strconv.Itoa(int(r.Step.Seconds())))
	}

	reqURL := c.baseURL + "/api/orbit/track?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, c.baseURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("track response exceeds %d byte limit", maxBodyBytes)
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decoding track response: %w", err)
	}

	c.logger.Debug("track fetched",
		"component", "orbit",
		"sat", snap.Sat,
		"points", len(snap.Track),
		"has_current", snap.Current != nil,
	)

	return &snap, nil
}
