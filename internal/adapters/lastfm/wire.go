package lastfm

import "github.com/replayed-app/replayed/internal/core/ports"

// Wire types for the user.getrecenttracks response. Last.fm wraps plain
// values in objects with a "#text" field, and reports application errors
// as an error/message pair in the body regardless of HTTP status.

type recentTracksResponse struct {
	RecentTracks struct {
		Track []recentTrack `json:"track"`
	} `json:"recenttracks"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

type recentTrack struct {
	Name   string   `json:"name"`
	Artist textNode `json:"artist"`
	Album  textNode `json:"album"`
	Date   *struct {
		UTS string `json:"uts"`
	} `json:"date"`
	Attr *struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

type textNode struct {
	Text string `json:"#text"`
}

// mapTrackToRaw converts one wire track into the port's raw record shape.
// Now-playing entries keep their flag; dropping them is the normalizer's
// call, not the adapter's.
func mapTrackToRaw(t recentTrack) ports.RawPlay {
	raw := ports.RawPlay{
		Name:   t.Name,
		Artist: t.Artist.Text,
		Album:  t.Album.Text,
	}
	if t.Date != nil {
		raw.UTS = t.Date.UTS
	}
	if t.Attr != nil && t.Attr.NowPlaying == "true" {
		raw.NowPlaying = true
	}
	return raw
}
