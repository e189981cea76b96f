package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/replayed-app/replayed/internal/core/domain"
)

const defaultAnalyticsLimit = 5

// Analytics handles GET /api/analytics/{username}?limit=N. It returns the
// top artists and top albums over the user's current snapshot. A user who
// has never synced gets 404, not an empty 200.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	limit := defaultAnalyticsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	overview, err := h.stats.Overview(r.Context(), username, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no listening data found for "+username)
			return
		}
		h.logger.Error("analytics query failure", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// ListUsers handles GET /api/users: snapshot metadata for every synced user.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	infos, err := h.repo.ListSnapshots(r.Context())
	if err != nil {
		h.logger.Error("snapshot listing failure", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": infos})
}
