package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/replayed-app/replayed/internal/core/domain"
	"github.com/replayed-app/replayed/internal/core/services"
)

// saveTracksRequest defines what a collaborator pushes at us: a batch of
// already-normalized events to snapshot for one username.
type saveTracksRequest struct {
	Username string             `json:"username"`
	Tracks   []domain.PlayEvent `json:"tracks"`
}

type saveTracksResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// SaveTracks handles POST /api/tracks.
func (h *Handler) SaveTracks(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	// 1. Decode the Request Body
	var req saveTracksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Validate Input
	if strings.TrimSpace(req.Username) == "" || len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "username and tracks are required")
		return
	}

	// 3. Call the Service
	result, err := h.ingest.Store(r.Context(), req.Username, req.Tracks)
	if err != nil {
		if errors.Is(err, services.ErrStorage) {
			h.logger.Error("track save storage failure", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store snapshot")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if result.Outcome == services.OutcomeEmptyHistory {
		writeJSON(w, http.StatusOK, saveTracksResponse{Message: "No valid tracks", Count: 0})
		return
	}

	// 4. Return the Response
	writeJSON(w, http.StatusOK, saveTracksResponse{Message: "Success", Count: result.Count})
}
