package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/models"
)

func TestDocumentHandler_ListAll(t *testing.T) {
	storage := newTestStorage(t)
	seedDocuments(t, storage)

	handler := NewDocumentHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/documents", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Documents models.DocumentSet `json:"documents"`
		Count     int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Documents[models.SectionNotifications], 2)
}

func TestDocumentHandler_ListBySection(t *testing.T) {
	storage := newTestStorage(t)
	seedDocuments(t, storage)

	handler := NewDocumentHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/documents?section=circulars", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Section   models.Section    `json:"section"`
		Documents []models.Document `json:"documents"`
		Count     int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.SectionCirculars, resp.Section)
	assert.Equal(t, 1, resp.Count)
}

func TestDocumentHandler_UnknownSection(t *testing.T) {
	storage := newTestStorage(t)
	handler := NewDocumentHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/documents?section=gazettes", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Stats(t *testing.T) {
	storage := newTestStorage(t)
	seedDocuments(t, storage)

	handler := NewDocumentHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/documents/stats", nil)
	rec := httptest.NewRecorder()
	handler.StatsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int            `json:"total"`
		Sections map[string]int `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Sections[string(models.SectionNotifications)])
	assert.Equal(t, 0, resp.Sections[string(models.SectionPublicNotices)])
}

func TestRunHandler_GetMissingRun(t *testing.T) {
	storage := newTestStorage(t)
	handler := NewRunHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/runs/run_missing", nil)
	rec := httptest.NewRecorder()
	handler.GetHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunHandler_ListEmpty(t *testing.T) {
	storage := newTestStorage(t)
	handler := NewRunHandler(storage, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/api/runs", nil)
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}
