package services

import (
	"strconv"
	"time"

	"github.com/replayed-app/replayed/internal/core/domain"
	"github.com/replayed-app/replayed/internal/core/ports"
)

// NormalizeRecentPlays converts raw source records into storable play events.
//
// Records that are still playing carry no resolved timestamp and are
// dropped, as are records whose timestamp does not parse. A malformed
// record never fails the batch.
func NormalizeRecentPlays(raws []ports.RawPlay) []domain.PlayEvent {
	events := make([]domain.PlayEvent, 0, len(raws))
	for _, raw := range raws {
		if raw.NowPlaying || raw.UTS == "" {
			continue
		}
		uts, err := strconv.ParseInt(raw.UTS, 10, 64)
		if err != nil {
			continue
		}
		events = append(events, domain.PlayEvent{
			Name:     raw.Name,
			Artist:   raw.Artist,
			Album:    raw.Album,
			PlayedAt: time.Unix(uts, 0).Format(domain.PlayedAtLayout),
		})
	}
	return events
}
