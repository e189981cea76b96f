// Package sqlite provides a SQLite-backed implementation of the snapshot
// repository port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/replayed-app/replayed/internal/core/domain"
	"github.com/replayed-app/replayed/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements the snapshot repository port for SQLite.
type Adapter struct {
	db *sql.DB
}

// compile-time interface assertion
var _ ports.SnapshotRepository = (*Adapter)(nil)

var keyReplacer = strings.NewReplacer("-", "_", " ", "_")

// UserKey derives the storage key for a raw username by mapping separator
// characters to underscores. The mapping is deterministic, and distinct
// usernames can collide ("R J" and "R-J" both become "R_J"); colliding
// users share one snapshot. Documented limitation, not a bug.
func UserKey(username string) string {
	return keyReplacer.Replace(username)
}

// NewAdapter creates a connection and runs the schema migration.
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully.
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Replace swaps the user's entire snapshot for the given batch inside one
// transaction: delete all prior plays for the key, bulk-insert the new
// events in order, and upsert the snapshot metadata row. The observable
// contract is replace-not-merge; a reader between two syncs sees either
// the old batch or the new one, never a mix.
func (a *Adapter) Replace(ctx context.Context, username string, events []domain.PlayEvent) error {
	key := UserKey(username)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net: auto-rollback if we error before commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM plays WHERE user_key = ?", key); err != nil {
		return fmt.Errorf("failed to clear old plays: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plays (user_key, name, artist, album, played_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx, key, ev.Name, ev.Artist, ev.Album, ev.PlayedAt); err != nil {
			return fmt.Errorf("failed to insert play %q: %w", ev.Name, err)
		}
	}

	querySnapshot := `
		INSERT INTO snapshots (user_key, username, event_count, synced_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_key) DO UPDATE SET
			username=excluded.username,
			event_count=excluded.event_count,
			synced_at=excluded.synced_at;
	`
	if _, err := tx.ExecContext(ctx, querySnapshot, key, username, len(events), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

// Read returns the user's current snapshot in insertion order.
func (a *Adapter) Read(ctx context.Context, username string) ([]domain.PlayEvent, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT name, artist, album, played_at
		FROM plays
		WHERE user_key = ?
		ORDER BY id ASC
	`, UserKey(username))
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer rows.Close()

	events := []domain.PlayEvent{}
	for rows.Next() {
		var ev domain.PlayEvent
		if err := rows.Scan(&ev.Name, &ev.Artist, &ev.Album, &ev.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plays: %w", err)
	}

	return events, nil
}

// TopBy groups the user's snapshot on the chosen dimension and returns up
// to limit entries ordered by count descending. Ties break on first
// insertion so the ranking is stable for a fixed snapshot. Blank albums
// are excluded from the album dimension. A user with no snapshot row gets
// domain.ErrNotFound.
func (a *Adapter) TopBy(ctx context.Context, username string, dim domain.Dimension, limit int) ([]domain.AggregateEntry, error) {
	key := UserKey(username)

	if _, err := a.snapshotByKey(ctx, key); err != nil {
		return nil, err
	}

	var column, filter string
	switch dim {
	case domain.DimensionArtist:
		column = "artist"
	case domain.DimensionAlbum:
		column = "album"
		filter = "AND album != ''"
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDimension, dim)
	}

	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*) AS cnt
		FROM plays
		WHERE user_key = ? %[2]s
		GROUP BY %[1]s
		ORDER BY cnt DESC, MIN(id) ASC
		LIMIT ?
	`, column, filter)

	rows, err := a.db.QueryContext(ctx, query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate plays: %w", err)
	}
	defer rows.Close()

	entries := []domain.AggregateEntry{}
	for rows.Next() {
		var e domain.AggregateEntry
		if err := rows.Scan(&e.Label, &e.Value); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aggregate entries: %w", err)
	}

	return entries, nil
}

// Snapshot returns the metadata row for the user's snapshot, or
// domain.ErrNotFound when the user has never synced.
func (a *Adapter) Snapshot(ctx context.Context, username string) (domain.SnapshotInfo, error) {
	return a.snapshotByKey(ctx, UserKey(username))
}

func (a *Adapter) snapshotByKey(ctx context.Context, key string) (domain.SnapshotInfo, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT user_key, username, event_count, synced_at
		FROM snapshots
		WHERE user_key = ?
	`, key)

	var info domain.SnapshotInfo
	if err := row.Scan(&info.UserKey, &info.Username, &info.EventCount, &info.SyncedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.SnapshotInfo{}, domain.ErrNotFound
		}
		return domain.SnapshotInfo{}, fmt.Errorf("failed to load snapshot metadata: %w", err)
	}
	return info, nil
}

// ListSnapshots returns metadata for every stored snapshot, most recently
// synced first.
func (a *Adapter) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT user_key, username, event_count, synced_at
		FROM snapshots
		ORDER BY synced_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	infos := []domain.SnapshotInfo{}
	for rows.Next() {
		var info domain.SnapshotInfo
		if err := rows.Scan(&info.UserKey, &info.Username, &info.EventCount, &info.SyncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot metadata: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot metadata: %w", err)
	}

	return infos, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS plays (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_key TEXT NOT NULL,
		name TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT NOT NULL DEFAULT '',
		played_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		user_key TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		event_count INTEGER NOT NULL,
		synced_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_plays_user_artist ON plays(user_key, artist);
	CREATE INDEX IF NOT EXISTS idx_plays_user_album ON plays(user_key, album);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	return nil
}
