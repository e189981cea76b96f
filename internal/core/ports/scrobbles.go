package ports

import (
	"context"
	"fmt"
)

// RawPlay is one record as reported by the scrobble source, before
// normalization. NowPlaying entries and entries with an unparseable UTS
// never survive into the domain layer.
type RawPlay struct {
	Name       string
	Artist     string
	Album      string
	UTS        string // Unix timestamp as reported by the source; empty for in-progress plays
	NowPlaying bool
}

// SourceError is an application-level rejection from the scrobble source
// (e.g. unknown user), as opposed to a transport failure.
type SourceError struct {
	Code    int
	Message string
}

func (e *SourceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("source error %d", e.Code)
	}
	return fmt.Sprintf("source error %d: %s", e.Code, e.Message)
}

// ScrobbleSource fetches a user's most recent plays from the external
// scrobbling service. Implementations bound the call with a network timeout.
type ScrobbleSource interface {
	RecentTracks(ctx context.Context, username string) ([]RawPlay, error)
}
