// Package worker provides background processing for sync jobs.
//
// The HTTP surface exposes sync as a synchronous call; the pool exists for
// callers that want the original fire-and-forget behavior without holding
// a request open. Job state lives in memory only and does not survive a
// restart.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/replayed-app/replayed/internal/core/services"
)

// JobStatus labels the lifecycle of one queued sync.
type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusSynced  JobStatus = "synced"
	StatusEmpty   JobStatus = "empty_history"
	StatusFailed  JobStatus = "failed"
)

// jobTimeout bounds one background sync end to end. The external fetch
// already carries its own client timeout; this is the outer guard.
const jobTimeout = 30 * time.Second

// Job represents a queued background sync for one username.
type Job struct {
	ID       string
	Username string
}

// JobState is the externally visible progress of a job.
type JobState struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Status     JobStatus  `json:"status"`
	Count      int        `json:"count"`
	Error      string     `json:"error,omitempty"`
	QueuedAt   time.Time  `json:"queued_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Pool manages background workers for sync jobs.
type Pool struct {
	ingest *services.Ingestor
	logger *slog.Logger
	jobs   chan Job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	states map[string]JobState
}

// NewPool creates a worker pool with the given queue size.
func NewPool(ingest *services.Ingestor, logger *slog.Logger, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		ingest: ingest,
		logger: logger,
		jobs:   make(chan Job, queueSize),
		states: make(map[string]JobState),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a background sync without blocking. It returns the new
// job ID, or ok=false when the queue is full.
func (p *Pool) Submit(username string) (string, bool) {
	job := Job{ID: uuid.NewString(), Username: username}

	p.mu.Lock()
	p.states[job.ID] = JobState{
		ID:       job.ID,
		Username: username,
		Status:   StatusQueued,
		QueuedAt: time.Now().UTC(),
	}
	p.mu.Unlock()

	select {
	case p.jobs <- job:
		return job.ID, true
	default:
		p.mu.Lock()
		delete(p.states, job.ID)
		p.mu.Unlock()
		p.logger.Warn("worker: queue full, dropping sync job", "username", username)
		return "", false
	}
}

// State returns the current state of a job.
func (p *Pool) State(id string) (JobState, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state, ok := p.states[id]
	return state, ok
}

func (p *Pool) processJob(job Job) {
	p.setStatus(job.ID, func(s *JobState) { s.Status = StatusRunning })

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := p.ingest.Sync(ctx, job.Username)
	now := time.Now().UTC()

	switch {
	case err != nil:
		p.logger.Warn("worker: sync job failed", "job_id", job.ID, "username", job.Username, "error", err)
		p.setStatus(job.ID, func(s *JobState) {
			s.Status = StatusFailed
			s.Error = err.Error()
			s.FinishedAt = &now
		})
	case result.Outcome == services.OutcomeEmptyHistory:
		p.setStatus(job.ID, func(s *JobState) {
			s.Status = StatusEmpty
			s.FinishedAt = &now
		})
	default:
		p.logger.Info("worker: sync job finished", "job_id", job.ID, "username", job.Username, "count", result.Count)
		p.setStatus(job.ID, func(s *JobState) {
			s.Status = StatusSynced
			s.Count = result.Count
			s.FinishedAt = &now
		})
	}
}

func (p *Pool) setStatus(id string, update func(*JobState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	state, ok := p.states[id]
	if !ok {
		return
	}
	update(&state)
	p.states[id] = state
}
