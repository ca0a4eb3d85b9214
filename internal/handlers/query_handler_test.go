package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/ternarybob/vigilo/internal/services/query"
	badgerstorage "github.com/ternarybob/vigilo/internal/storage/badger"
)

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()

	cfg := common.BadgerConfig{Path: t.TempDir()}
	storage, err := badgerstorage.NewManager(arbor.NewLogger(), &cfg)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func seedDocuments(t *testing.T, storage interfaces.StorageManager) {
	t.Helper()

	require.NoError(t, storage.DocumentStorage().SaveDocuments(models.SectionNotifications, []models.Document{
		{ID: "n1", Date: "2024-03-01", Description: "Amendment in import policy of gold"},
		{ID: "n2", Date: "2024-01-15", Description: "Export restrictions on wheat"},
	}))
	require.NoError(t, storage.DocumentStorage().SaveDocuments(models.SectionCirculars, []models.Document{
		{ID: "c1", Date: "2024-02-10", Description: "Clarification on duty drawback scheme"},
	}))
}

func TestQueryHandler_InterpretsAndFilters(t *testing.T) {
	storage := newTestStorage(t)
	seedDocuments(t, storage)

	logger := arbor.NewLogger()
	handler := NewQueryHandler(query.NewService(nil, logger), storage, logger)

	body := strings.NewReader(`{"query": "latest notification"}`)
	req := httptest.NewRequest("POST", "/api/query", body)
	rec := httptest.NewRecorder()

	handler.QueryHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Query   string                   `json:"query"`
		Results []models.MatchedDocument `json:"results"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "n1", resp.Results[0].ID)
	assert.Equal(t, models.SectionNotifications, resp.Results[0].Section)
}

func TestQueryHandler_RejectsEmptyQuery(t *testing.T) {
	storage := newTestStorage(t)
	logger := arbor.NewLogger()
	handler := NewQueryHandler(query.NewService(nil, logger), storage, logger)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"query": "  "}`))
	rec := httptest.NewRecorder()

	handler.QueryHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_RejectsInvalidBody(t *testing.T) {
	storage := newTestStorage(t)
	logger := arbor.NewLogger()
	handler := NewQueryHandler(query.NewService(nil, logger), storage, logger)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader("not json"))
	rec := httptest.NewRecorder()

	handler.QueryHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_RequiresPost(t *testing.T) {
	storage := newTestStorage(t)
	logger := arbor.NewLogger()
	handler := NewQueryHandler(query.NewService(nil, logger), storage, logger)

	req := httptest.NewRequest("GET", "/api/query", nil)
	rec := httptest.NewRecorder()

	handler.QueryHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
