package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/ternarybob/vigilo/internal/services/query"
)

// QueryHandler answers natural language queries against the stored documents
type QueryHandler struct {
	queryService *query.Service
	storage      interfaces.StorageManager
	logger       arbor.ILogger
}

func NewQueryHandler(queryService *query.Service, storage interfaces.StorageManager, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		storage:      storage,
		logger:       logger,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Query   string                   `json:"query"`
	Spec    *models.SearchSpec       `json:"spec"`
	Results []models.MatchedDocument `json:"results"`
	Count   int                      `json:"count"`
}

// QueryHandler handles POST /api/query
func (h *QueryHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		WriteError(w, http.StatusBadRequest, "Query text is required")
		return
	}

	docs, err := h.storage.DocumentStorage().GetAllDocuments()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load documents for query")
		WriteError(w, http.StatusInternalServerError, "Failed to load documents")
		return
	}

	spec, results := h.queryService.ProcessQuery(r.Context(), req.Query, docs)

	WriteJSON(w, http.StatusOK, queryResponse{
		Query:   req.Query,
		Spec:    spec,
		Results: results,
		Count:   len(results),
	})
}
