package lastfm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/replayed-app/replayed/internal/core/ports"
)

const recentTracksBody = `{
	"recenttracks": {
		"track": [
			{
				"name": "Now Spinning",
				"artist": {"#text": "Artist X"},
				"album": {"#text": ""},
				"@attr": {"nowplaying": "true"}
			},
			{
				"name": "Song B",
				"artist": {"#text": "Artist X"},
				"album": {"#text": "Alb1"},
				"date": {"uts": "1700000000", "#text": "14 Nov 2023, 22:13"}
			},
			{
				"name": "Song C",
				"artist": {"#text": "Artist Y"},
				"album": {"#text": ""},
				"date": {"uts": "1699999000", "#text": "14 Nov 2023, 21:56"}
			}
		]
	}
}`

func TestClientRecentTracks(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"method":  q.Get("method"),
			"user":    q.Get("user"),
			"api_key": q.Get("api_key"),
			"format":  q.Get("format"),
			"limit":   q.Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(recentTracksBody))
	}))
	defer ts.Close()

	client := NewClient(ts.Client(), ts.URL, "test-key")

	raws, err := client.RecentTracks(context.Background(), "rj")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"method":  "user.getrecenttracks",
		"user":    "rj",
		"api_key": "test-key",
		"format":  "json",
		"limit":   "100",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Fatalf("query param %s: got %q, want %q", k, gotQuery[k], v)
		}
	}

	if len(raws) != 3 {
		t.Fatalf("raws: got %d, want 3", len(raws))
	}
	if !raws[0].NowPlaying || raws[0].UTS != "" {
		t.Fatalf("expected first record flagged now playing, got %+v", raws[0])
	}
	if raws[1].NowPlaying {
		t.Fatalf("second record wrongly flagged now playing: %+v", raws[1])
	}
	if raws[1].Name != "Song B" || raws[1].Artist != "Artist X" || raws[1].Album != "Alb1" || raws[1].UTS != "1700000000" {
		t.Fatalf("second record mapped wrong: %+v", raws[1])
	}
	if raws[2].Album != "" {
		t.Fatalf("expected blank album passthrough, got %q", raws[2].Album)
	}
}

func TestClientRecentTracksSourceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": 6, "message": "User not found"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.Client(), ts.URL, "test-key")

	_, err := client.RecentTracks(context.Background(), "nosuchuser")
	var srcErr *ports.SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("expected *ports.SourceError, got %v", err)
	}
	if srcErr.Code != 6 || srcErr.Message != "User not found" {
		t.Fatalf("unexpected source error: %+v", srcErr)
	}
}

func TestClientRecentTracksMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer ts.Close()

	client := NewClient(ts.Client(), ts.URL, "test-key")

	if _, err := client.RecentTracks(context.Background(), "rj"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestClientRecentTracksNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	client := &Client{
		httpClient:  http.DefaultClient,
		baseURL:     ts.URL,
		apiKey:      "test-key",
		maxRetries:  1,
		baseBackoff: 1,
	}

	_, err := client.RecentTracks(context.Background(), "rj")
	if err == nil {
		t.Fatal("expected network error")
	}
	var srcErr *ports.SourceError
	if errors.As(err, &srcErr) {
		t.Fatalf("network failure must not look like a source rejection: %v", err)
	}
}
