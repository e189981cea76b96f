// Package lastfm provides an HTTP adapter for the Last.fm scrobble API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/replayed-app/replayed/internal/core/ports"
)

const (
	defaultBaseURL = "https://ws.audioscrobbler.com/2.0"
	defaultTimeout = 10 * time.Second

	// recentTracksLimit caps one fetch at a single page of the most
	// recent plays; each sync is a full snapshot, not a crawl.
	recentTracksLimit = 100
)

// Client is an HTTP client for the Last.fm adapter.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	maxRetries  int
	baseBackoff time.Duration
}

// compile-time interface assertion
var _ ports.ScrobbleSource = (*Client)(nil)

// NewClient constructs a new Last.fm client. A nil httpClient gets a
// default with the standard 10s timeout; an empty baseURL targets the
// public audioscrobbler endpoint.
func NewClient(httpClient *http.Client, baseURL string, apiKey string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// RecentTracks fetches up to one page of the user's most recent plays.
//
// An application-level rejection (bad username, bad key) surfaces as
// *ports.SourceError carrying the source's own message; transport
// failures come back wrapped after the retry budget is spent.
func (c *Client) RecentTracks(ctx context.Context, username string) ([]ports.RawPlay, error) {
	params := url.Values{
		"method":  {"user.getrecenttracks"},
		"user":    {username},
		"api_key": {c.apiKey},
		"format":  {"json"},
		"limit":   {strconv.Itoa(recentTracksLimit)},
	}

	reqURL := c.baseURL + "/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("lastfm adapter: %w", err)
	}

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("lastfm adapter: %w", err)
	}
	defer resp.Body.Close()

	// Last.fm reports application errors in the JSON body, so decode
	// before judging the status code.
	var parsed recentTracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("lastfm adapter: decode response: %w", err)
	}

	if parsed.Error != 0 {
		return nil, &ports.SourceError{Code: parsed.Error, Message: parsed.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lastfm adapter: status %d", resp.StatusCode)
	}

	raws := make([]ports.RawPlay, 0, len(parsed.RecentTracks.Track))
	for _, t := range parsed.RecentTracks.Track {
		raws = append(raws, mapTrackToRaw(t))
	}
	return raws, nil
}
