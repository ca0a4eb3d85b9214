package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/vigilo/internal/models"
)

func TestRuleBasedInterpretation(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		expectedType models.Section
		expectedKind models.DateFilterKind
		expectedStart string
		expectedEnd   string
		expectedKeywords []string
	}{
		{
			name:         "latest notifications",
			query:        "Show me the latest notifications",
			expectedType: models.SectionNotifications,
			expectedKind: models.DateFilterLatest,
			expectedKeywords: []string{},
		},
		{
			name:         "latest across all sections",
			query:        "What are the most recent documents?",
			expectedType: models.SectionAny,
			expectedKind: models.DateFilterLatest,
			expectedKeywords: []string{},
		},
		{
			name:          "notices before ISO date",
			query:         "public notices before 2024-01-15",
			expectedType:  models.SectionPublicNotices,
			expectedKind:  models.DateFilterBefore,
			expectedEnd:   "2024-01-15",
			expectedKeywords: []string{"public"},
		},
		{
			name:          "circulars after slash date",
			query:         "circulars issued after 15/06/2023",
			expectedType:  models.SectionCirculars,
			expectedKind:  models.DateFilterAfter,
			expectedStart: "2023-06-15",
			expectedKeywords: []string{"issued"},
		},
		{
			name:          "specific long-form date",
			query:         "notification dated March 5, 2024",
			expectedType:  models.SectionNotifications,
			expectedKind:  models.DateFilterSpecific,
			expectedStart: "2024-03-05",
			expectedKeywords: []string{"march"},
		},
		{
			name:          "two dates form a range",
			query:         "documents between 2023-01-01 and 2023-06-30",
			expectedType:  models.SectionAny,
			expectedKind:  models.DateFilterRange,
			expectedStart: "2023-01-01",
			expectedEnd:   "2023-06-30",
			expectedKeywords: []string{},
		},
		{
			name:         "recency trigger overrides a date",
			query:        "latest circulars since 2023-01-01",
			expectedType: models.SectionCirculars,
			expectedKind: models.DateFilterLatest,
			expectedKeywords: []string{"since"},
		},
		{
			name:         "notification wins over notice",
			query:        "notifications and notices",
			expectedType: models.SectionNotifications,
			expectedKind: models.DateFilterLatest,
			expectedKeywords: []string{},
		},
		{
			name:             "content keywords survive",
			query:            "show me export policy amendments",
			expectedType:     models.SectionAny,
			expectedKind:     models.DateFilterLatest,
			expectedKeywords: []string{"export", "policy", "amendments"},
		},
		{
			name:             "empty query is the wildcard",
			query:            "",
			expectedType:     models.SectionAny,
			expectedKind:     models.DateFilterLatest,
			expectedKeywords: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ruleBasedInterpretation(tt.query)

			assert.Equal(t, tt.expectedType, spec.DocumentType)
			assert.Equal(t, tt.expectedKind, spec.DateFilter.Kind)
			if tt.expectedStart != "" {
				assert.Equal(t, tt.expectedStart, spec.DateFilter.DateStart)
			}
			if tt.expectedEnd != "" {
				assert.Equal(t, tt.expectedEnd, spec.DateFilter.DateEnd)
			}
			assert.Equal(t, tt.expectedKeywords, spec.Keywords)
		})
	}
}

func TestRuleBasedInterpretation_SpecificSetsBothEndpoints(t *testing.T) {
	spec := ruleBasedInterpretation("documents on 2024-02-29")

	assert.Equal(t, models.DateFilterSpecific, spec.DateFilter.Kind)
	assert.Equal(t, "2024-02-29", spec.DateFilter.DateStart)
	assert.Equal(t, "2024-02-29", spec.DateFilter.DateEnd)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "ISO passthrough", token: "2024-01-15", expected: "2024-01-15"},
		{name: "slash date reordered", token: "05/03/2024", expected: "2024-03-05"},
		{name: "long form", token: "January 15, 2024", expected: "2024-01-15"},
		{name: "long form single digit day", token: "June 5, 2023", expected: "2023-06-05"},
		{name: "December maps to 12", token: "December 31, 2023", expected: "2023-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeDate(tt.token))
		})
	}
}

func TestNormalizeDate_UnparseableDefaultsToToday(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, today, normalizeDate("not a date"))
}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "short words dropped",
			query:    "me on it export",
			expected: []string{"export"},
		},
		{
			name:     "stopwords dropped",
			query:    "show the latest import restrictions",
			expected: []string{"import", "restrictions"},
		},
		{
			name:     "capped at five",
			query:    "alpha bravo charlie delta echo foxtrot golf",
			expected: []string{"alpha", "bravo", "charlie", "delta", "echo"},
		},
		{
			name:     "digits are not keywords",
			query:    "2024 15/06/2023",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractKeywords(tt.query))
		})
	}
}
