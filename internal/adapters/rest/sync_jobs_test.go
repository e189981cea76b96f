package rest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replayed-app/replayed/internal/adapters/sqlite"
	"github.com/replayed-app/replayed/internal/core/ports"
	"github.com/replayed-app/replayed/internal/core/services"
	"github.com/replayed-app/replayed/internal/worker"
)

func TestSyncJobsLifecycle(t *testing.T) {
	repo, err := sqlite.NewAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	source := &stubSource{raws: []ports.RawPlay{
		{Name: "Song B", Artist: "Artist X", Album: "Alb1", UTS: "1700000000"},
	}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ingest := services.NewIngestor(source, repo)
	stats := services.NewAnalyzer(repo)
	pool := worker.NewPool(ingest, logger, 4)
	pool.Start(1)

	h := NewHandler(ingest, stats, repo, pool, logger)

	rec := doJSON(t, h, http.MethodPost, "/api/sync/jobs", `{"username": "rj"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var submitted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.JobID)
	assert.Equal(t, "/api/sync/jobs/"+submitted.JobID, rec.Header().Get("Location"))

	// Stop drains the queue, so afterwards the job state is final.
	pool.Stop()

	rec = doJSON(t, h, http.MethodGet, "/api/sync/jobs/"+submitted.JobID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state worker.JobState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, worker.StatusSynced, state.Status)
	assert.Equal(t, 1, state.Count)

	rec = doJSON(t, h, http.MethodGet, "/api/sync/jobs/not-a-job", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitSyncJobValidation(t *testing.T) {
	repo, err := sqlite.NewAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ingest := services.NewIngestor(&stubSource{}, repo)
	stats := services.NewAnalyzer(repo)
	pool := worker.NewPool(ingest, logger, 1)
	t.Cleanup(pool.Stop)

	h := NewHandler(ingest, stats, repo, pool, logger)

	rec := doJSON(t, h, http.MethodPost, "/api/sync/jobs", `{"username": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
