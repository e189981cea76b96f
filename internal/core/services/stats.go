package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/replayed-app/replayed/internal/core/domain"
	"github.com/replayed-app/replayed/internal/core/ports"
)

// Analyzer computes ranked play counts over a user's current snapshot.
// Aggregates are derived per request; nothing here is cached or stored.
type Analyzer struct {
	repo ports.SnapshotRepository
}

// NewAnalyzer constructs an Analyzer.
func NewAnalyzer(repo ports.SnapshotRepository) *Analyzer {
	return &Analyzer{repo: repo}
}

// Top returns up to limit entries for one dimension, sorted by play count
// descending. A user with no snapshot gets an empty list, not an error:
// "no data yet" is a valid answer at this layer.
func (a *Analyzer) Top(ctx context.Context, username string, dim domain.Dimension, limit int) ([]domain.AggregateEntry, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if !dim.Valid() {
		return nil, fmt.Errorf("service: %w: %q", domain.ErrInvalidDimension, dim)
	}
	if limit < 1 {
		return nil, fmt.Errorf("service: %w: %d", domain.ErrInvalidLimit, limit)
	}

	entries, err := a.repo.TopBy(ctx, username, dim, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.AggregateEntry{}, nil
		}
		return nil, fmt.Errorf("service: failed to aggregate %s plays: %w", dim, err)
	}
	return entries, nil
}

// Overview returns both ranked lists for the analytics surface.
// Unlike Top, a missing snapshot is reported as domain.ErrNotFound so the
// HTTP layer can answer 404 per its contract.
func (a *Analyzer) Overview(ctx context.Context, username string, limit int) (domain.StatsOverview, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.StatsOverview{}, ErrUsernameRequired
	}
	if limit < 1 {
		return domain.StatsOverview{}, fmt.Errorf("service: %w: %d", domain.ErrInvalidLimit, limit)
	}

	if _, err := a.repo.Snapshot(ctx, username); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.StatsOverview{}, err
		}
		return domain.StatsOverview{}, fmt.Errorf("service: failed to load snapshot: %w", err)
	}

	artists, err := a.repo.TopBy(ctx, username, domain.DimensionArtist, limit)
	if err != nil {
		return domain.StatsOverview{}, fmt.Errorf("service: failed to aggregate artist plays: %w", err)
	}
	albums, err := a.repo.TopBy(ctx, username, domain.DimensionAlbum, limit)
	if err != nil {
		return domain.StatsOverview{}, fmt.Errorf("service: failed to aggregate album plays: %w", err)
	}

	return domain.StatsOverview{TopArtists: artists, TopAlbums: albums}, nil
}
