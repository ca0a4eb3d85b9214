package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
)

// RunHandler serves persisted pipeline run results
type RunHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

func NewRunHandler(storage interfaces.StorageManager, logger arbor.ILogger) *RunHandler {
	return &RunHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/runs with an optional limit parameter
func (h *RunHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	runs, err := h.storage.RunStorage().ListRuns(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list runs")
		WriteError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetHandler handles GET /api/runs/{id}
func (h *RunHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	run, err := h.storage.RunStorage().GetRun(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Run not found: "+id)
		return
	}

	WriteJSON(w, http.StatusOK, run)
}
