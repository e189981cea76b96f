package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/replayed-app/replayed/internal/core/ports"
	"github.com/replayed-app/replayed/internal/core/services"
)

type syncRequest struct {
	Username string `json:"username"`
}

type syncResponse struct {
	Outcome services.SyncOutcome `json:"outcome"`
	Count   int                  `json:"count"`
}

// Sync handles POST /api/sync. It runs the full pipeline synchronously:
// fetch from Last.fm, normalize, replace the snapshot.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	result, err := h.ingest.Sync(r.Context(), req.Username)
	if err != nil {
		h.writeSyncError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse(result))
}

// writeSyncError maps pipeline failures onto the documented taxonomy.
// Only the error string crosses the boundary, never internals.
func (h *Handler) writeSyncError(w http.ResponseWriter, r *http.Request, err error) {
	var srcErr *ports.SourceError
	switch {
	case errors.Is(err, services.ErrUsernameRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &srcErr):
		// Application-level rejection from the source, e.g. unknown user.
		writeError(w, http.StatusBadGateway, srcErr.Message)
	case errors.Is(err, services.ErrStorage):
		h.logger.Error("sync storage failure", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store snapshot")
	default:
		// Network-level failure reaching the source.
		h.logger.Warn("sync source unreachable", "error", err)
		writeError(w, http.StatusBadGateway, "could not reach the scrobble source")
	}
}

type submitJobResponse struct {
	JobID string `json:"job_id"`
}

// SubmitSyncJob handles POST /api/sync/jobs: queue a background sync and
// answer immediately with the job ID.
func (h *Handler) SubmitSyncJob(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		writeError(w, http.StatusNotImplemented, "background sync not configured")
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	jobID, ok := h.pool.Submit(strings.TrimSpace(req.Username))
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "sync queue is full, try again later")
		return
	}

	w.Header().Set("Location", "/api/sync/jobs/"+jobID)
	writeJSON(w, http.StatusAccepted, submitJobResponse{JobID: jobID})
}

// SyncJobState handles GET /api/sync/jobs/{id}.
func (h *Handler) SyncJobState(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		writeError(w, http.StatusNotImplemented, "background sync not configured")
		return
	}

	jobID := chi.URLParam(r, "id")
	state, ok := h.pool.State(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job id")
		return
	}

	writeJSON(w, http.StatusOK, state)
}
