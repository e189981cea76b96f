package ports

import (
	"context"

	"github.com/replayed-app/replayed/internal/core/domain"
)

// SnapshotRepository persists the per-user listening snapshot.
//
// Replace is wipe-then-insert: the prior dataset for the user's key is
// discarded wholesale, never merged. Two usernames that sanitize to the
// same key share a snapshot by design.
type SnapshotRepository interface {
	Replace(ctx context.Context, username string, events []domain.PlayEvent) error
	Read(ctx context.Context, username string) ([]domain.PlayEvent, error)
	TopBy(ctx context.Context, username string, dim domain.Dimension, limit int) ([]domain.AggregateEntry, error)
	Snapshot(ctx context.Context, username string) (domain.SnapshotInfo, error)
	ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error)
}
