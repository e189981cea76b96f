package domain

// PlayedAtLayout is the storage format for a play's completion time,
// rendered in local time.
const PlayedAtLayout = "2006-01-02 15:04:05"

// PlayEvent represents one completed play of a track.
// Events without a resolved timestamp (still playing) never become PlayEvents.
type PlayEvent struct {
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Album    string `json:"album"` // optional, may be blank
	PlayedAt string `json:"played_at"`
}
