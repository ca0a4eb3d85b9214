package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/models"
)

func TestService_ProcessQuery_LatestNotifications(t *testing.T) {
	service := NewService(nil, arbor.NewLogger())

	spec, results := service.ProcessQuery(context.Background(), "Show me the latest notifications", testDocumentSet())

	assert.Equal(t, models.SectionNotifications, spec.DocumentType)
	assert.Equal(t, models.DateFilterLatest, spec.DateFilter.Kind)
	require.Len(t, results, 1)
	assert.Equal(t, "n2", results[0].ID)
	assert.Equal(t, models.SectionNotifications, results[0].Section)
}

func TestService_ProcessQuery_KeywordSearch(t *testing.T) {
	service := NewService(nil, arbor.NewLogger())

	spec, results := service.ProcessQuery(context.Background(), "documents mentioning drawback between 2024-01-01 and 2024-12-31", testDocumentSet())

	assert.Equal(t, models.DateFilterRange, spec.DateFilter.Kind)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ID)
}

func TestService_ProcessQuery_NoMatches(t *testing.T) {
	service := NewService(nil, arbor.NewLogger())

	_, results := service.ProcessQuery(context.Background(), "notices before 2000-01-01", testDocumentSet())

	assert.Empty(t, results)
}

// Keyword matching is exact substring matching: a plural query term does not
// match its singular form in a description, so this query finds nothing on
// the rule-based path even though a circular about export incentives exists.
func TestService_ProcessQuery_PluralKeywordNoStemming(t *testing.T) {
	service := NewService(nil, arbor.NewLogger())

	docs := models.DocumentSet{
		models.SectionCirculars: {
			{ID: "c1", Date: "2023-01-05", Description: "Circular on export incentives"},
		},
	}

	spec, results := service.ProcessQuery(context.Background(), "Find circulars about exports from January 2023", docs)

	assert.Equal(t, models.SectionCirculars, spec.DocumentType)
	assert.Contains(t, spec.Keywords, "exports")
	assert.Empty(t, results)
}

func TestService_ProcessQuery_EmptyStore(t *testing.T) {
	service := NewService(nil, arbor.NewLogger())

	spec, results := service.ProcessQuery(context.Background(), "latest circulars", models.DocumentSet{})

	assert.Equal(t, models.SectionCirculars, spec.DocumentType)
	assert.Empty(t, results)
}
