package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/replayed-app/replayed/internal/core/domain"
	"github.com/replayed-app/replayed/internal/core/ports"
	"github.com/replayed-app/replayed/internal/core/services"
)

type stubSource struct {
	raws []ports.RawPlay
	err  error
}

func (s *stubSource) RecentTracks(ctx context.Context, username string) ([]ports.RawPlay, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.raws, nil
}

type stubRepo struct {
	replaceErr error
}

func (s *stubRepo) Replace(ctx context.Context, username string, events []domain.PlayEvent) error {
	return s.replaceErr
}

func (s *stubRepo) Read(ctx context.Context, username string) ([]domain.PlayEvent, error) {
	return nil, nil
}

func (s *stubRepo) TopBy(ctx context.Context, username string, dim domain.Dimension, limit int) ([]domain.AggregateEntry, error) {
	return nil, nil
}

func (s *stubRepo) Snapshot(ctx context.Context, username string) (domain.SnapshotInfo, error) {
	return domain.SnapshotInfo{}, domain.ErrNotFound
}

func (s *stubRepo) ListSnapshots(ctx context.Context) ([]domain.SnapshotInfo, error) {
	return nil, nil
}

func newTestPool(source ports.ScrobbleSource, repo ports.SnapshotRepository, queueSize int) *Pool {
	ingest := services.NewIngestor(source, repo)
	return NewPool(ingest, slog.New(slog.NewTextHandler(io.Discard, nil)), queueSize)
}

func TestPoolProcessesJob(t *testing.T) {
	source := &stubSource{raws: []ports.RawPlay{
		{Name: "A", Artist: "X", UTS: "1700000000"},
		{Name: "B", Artist: "X", UTS: "1700000100"},
	}}
	pool := newTestPool(source, &stubRepo{}, 4)
	pool.Start(1)

	jobID, ok := pool.Submit("rj")
	if !ok {
		t.Fatal("submit rejected")
	}

	pool.Stop() // waits for workers to drain the queue

	state, ok := pool.State(jobID)
	if !ok {
		t.Fatal("job state missing")
	}
	if state.Status != StatusSynced {
		t.Fatalf("status: got %q, want %q (error=%q)", state.Status, StatusSynced, state.Error)
	}
	if state.Count != 2 {
		t.Fatalf("count: got %d, want 2", state.Count)
	}
	if state.FinishedAt == nil {
		t.Fatal("finished_at not set")
	}
}

func TestPoolReportsOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		source     *stubSource
		repo       *stubRepo
		wantStatus JobStatus
		wantError  bool
	}{
		{
			name:       "empty history",
			source:     &stubSource{},
			repo:       &stubRepo{},
			wantStatus: StatusEmpty,
		},
		{
			name:       "source failure",
			source:     &stubSource{err: errors.New("dial tcp: connection refused")},
			repo:       &stubRepo{},
			wantStatus: StatusFailed,
			wantError:  true,
		},
		{
			name:       "storage failure",
			source:     &stubSource{raws: []ports.RawPlay{{Name: "A", Artist: "X", UTS: "1700000000"}}},
			repo:       &stubRepo{replaceErr: errors.New("disk full")},
			wantStatus: StatusFailed,
			wantError:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool := newTestPool(tc.source, tc.repo, 4)
			pool.Start(1)

			jobID, ok := pool.Submit("rj")
			if !ok {
				t.Fatal("submit rejected")
			}
			pool.Stop()

			state, _ := pool.State(jobID)
			if state.Status != tc.wantStatus {
				t.Fatalf("status: got %q, want %q", state.Status, tc.wantStatus)
			}
			if (state.Error != "") != tc.wantError {
				t.Fatalf("error: got %q, wantError=%v", state.Error, tc.wantError)
			}
		})
	}
}

func TestPoolDropsWhenQueueFull(t *testing.T) {
	// Workers never started, so the queue fills up.
	pool := newTestPool(&stubSource{}, &stubRepo{}, 1)

	if _, ok := pool.Submit("first"); !ok {
		t.Fatal("first submit should be queued")
	}
	jobID, ok := pool.Submit("second")
	if ok {
		t.Fatal("second submit should be dropped")
	}
	if jobID != "" {
		t.Fatalf("dropped submit returned id %q", jobID)
	}
	if _, found := pool.State(jobID); found {
		t.Fatal("dropped job must not leave state behind")
	}
}

func TestPoolUnknownJob(t *testing.T) {
	pool := newTestPool(&stubSource{}, &stubRepo{}, 1)
	if _, ok := pool.State("nope"); ok {
		t.Fatal("expected unknown job")
	}
}
