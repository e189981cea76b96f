package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/replayed-app/replayed/internal/core/domain"
	"github.com/replayed-app/replayed/internal/core/ports"
)

// SyncOutcome labels how a sync concluded.
type SyncOutcome string

const (
	// OutcomeSynced means a new snapshot was persisted.
	OutcomeSynced SyncOutcome = "synced"
	// OutcomeEmptyHistory means the source returned no usable plays;
	// any prior snapshot is left untouched.
	OutcomeEmptyHistory SyncOutcome = "empty_history"
)

// SyncResult reports the outcome of one sync run.
type SyncResult struct {
	Outcome SyncOutcome `json:"outcome"`
	Count   int         `json:"count"`
}

// ErrUsernameRequired rejects a sync for a blank username before any
// network or storage work happens.
var ErrUsernameRequired = errors.New("service: username is required")

// ErrStorage marks persistence-layer failures so the transport layer can
// map them without matching on message text.
var ErrStorage = errors.New("service: storage failure")

// Ingestor orchestrates the ingest pipeline: fetch recent plays from the
// scrobble source, normalize them, and replace the user's snapshot.
type Ingestor struct {
	source ports.ScrobbleSource
	repo   ports.SnapshotRepository
}

// NewIngestor constructs an Ingestor.
func NewIngestor(source ports.ScrobbleSource, repo ports.SnapshotRepository) *Ingestor {
	return &Ingestor{
		source: source,
		repo:   repo,
	}
}

// Sync runs the full pipeline for one username.
//
// A source rejection surfaces as *ports.SourceError; transport failures
// come back wrapped. When normalization yields nothing, storage is not
// touched and the result reports OutcomeEmptyHistory. Sync is synchronous;
// callers decide whether to run it in the background.
func (i *Ingestor) Sync(ctx context.Context, username string) (SyncResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return SyncResult{}, ErrUsernameRequired
	}

	raws, err := i.source.RecentTracks(ctx, username)
	if err != nil {
		var srcErr *ports.SourceError
		if errors.As(err, &srcErr) {
			return SyncResult{}, fmt.Errorf("service: source rejected sync: %w", err)
		}
		return SyncResult{}, fmt.Errorf("service: failed to fetch recent tracks: %w", err)
	}

	events := NormalizeRecentPlays(raws)
	if len(events) == 0 {
		return SyncResult{Outcome: OutcomeEmptyHistory}, nil
	}

	if err := i.repo.Replace(ctx, username, events); err != nil {
		return SyncResult{}, fmt.Errorf("%w: replace snapshot: %w", ErrStorage, err)
	}

	return SyncResult{Outcome: OutcomeSynced, Count: len(events)}, nil
}

// Store persists an already-normalized batch pushed by a collaborator,
// bypassing the fetch stage. Events missing a name, artist or parseable
// timestamp are dropped the same way the normalizer drops raw records;
// if nothing survives, the prior snapshot is left untouched.
func (i *Ingestor) Store(ctx context.Context, username string, events []domain.PlayEvent) (SyncResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return SyncResult{}, ErrUsernameRequired
	}

	kept := make([]domain.PlayEvent, 0, len(events))
	for _, ev := range events {
		if ev.Name == "" || ev.Artist == "" || ev.PlayedAt == "" {
			continue
		}
		if _, err := time.ParseInLocation(domain.PlayedAtLayout, ev.PlayedAt, time.Local); err != nil {
			continue
		}
		kept = append(kept, ev)
	}
	if len(kept) == 0 {
		return SyncResult{Outcome: OutcomeEmptyHistory}, nil
	}

	if err := i.repo.Replace(ctx, username, kept); err != nil {
		return SyncResult{}, fmt.Errorf("%w: replace snapshot: %w", ErrStorage, err)
	}

	return SyncResult{Outcome: OutcomeSynced, Count: len(kept)}, nil
}
