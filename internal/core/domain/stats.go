package domain

import "time"

// Dimension selects which field of a snapshot aggregates are grouped on.
type Dimension string

const (
	DimensionArtist Dimension = "artist"
	DimensionAlbum  Dimension = "album"
)

// Valid reports whether the dimension is one the aggregation layer supports.
func (d Dimension) Valid() bool {
	return d == DimensionArtist || d == DimensionAlbum
}

// AggregateEntry is a (label, count) pair derived from a snapshot.
// It is computed on demand and never persisted.
type AggregateEntry struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// StatsOverview bundles both ranked lists for the analytics surface.
type StatsOverview struct {
	TopArtists []AggregateEntry `json:"top_artists"`
	TopAlbums  []AggregateEntry `json:"top_albums"`
}

// SnapshotInfo describes the stored snapshot for one user key.
type SnapshotInfo struct {
	UserKey    string    `json:"user_key"`
	Username   string    `json:"username"`
	EventCount int       `json:"event_count"`
	SyncedAt   time.Time `json:"synced_at"`
}
