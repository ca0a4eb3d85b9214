package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
)

// DocumentHandler serves the stored portal documents
type DocumentHandler struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

func NewDocumentHandler(storage interfaces.StorageManager, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/documents with an optional section filter
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if label := r.URL.Query().Get("section"); label != "" {
		section := models.ParseSection(label)
		if section == models.SectionAny {
			WriteError(w, http.StatusBadRequest, "Unknown section: "+label)
			return
		}

		docs, err := h.storage.DocumentStorage().GetDocuments(section)
		if err != nil {
			h.logger.Error().Err(err).Str("section", string(section)).Msg("Failed to load documents")
			WriteError(w, http.StatusInternalServerError, "Failed to load documents")
			return
		}

		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"section":   section,
			"documents": docs,
			"count":     len(docs),
		})
		return
	}

	docs, err := h.storage.DocumentStorage().GetAllDocuments()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load documents")
		WriteError(w, http.StatusInternalServerError, "Failed to load documents")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     docs.Count(),
	})
}

// StatsHandler handles GET /api/documents/stats
func (h *DocumentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	docs, err := h.storage.DocumentStorage().GetAllDocuments()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load documents")
		WriteError(w, http.StatusInternalServerError, "Failed to load documents")
		return
	}

	sections := make(map[string]int, len(models.Sections))
	withText := 0
	for _, section := range models.Sections {
		sections[string(section)] = len(docs[section])
		for _, doc := range docs[section] {
			if doc.Text != "" {
				withText++
			}
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"total":     docs.Count(),
		"sections":  sections,
		"with_text": withText,
	})
}
