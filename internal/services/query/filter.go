package query

import (
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/models"
)

// FilterDocuments applies a search spec to the full document set and returns
// the matching documents, newest first, each tagged with its source section.
// Documents with a missing date are dropped rather than aborting the filter.
func FilterDocuments(docs models.DocumentSet, spec *models.SearchSpec, logger arbor.ILogger) (results []models.MatchedDocument) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Warn().Str("panic", "recovered").Msg("Document filtering failed, returning no results")
			}
			results = nil
		}
	}()

	if spec == nil {
		spec = models.DefaultSpec()
	}

	var matched []models.MatchedDocument
	for _, section := range models.Sections {
		if spec.DocumentType != models.SectionAny && spec.DocumentType != section {
			continue
		}
		for _, doc := range docs[section] {
			if doc.Date == "" {
				continue
			}
			if !matchesDateFilter(doc.Date, spec.DateFilter) {
				continue
			}
			if !matchesKeywords(doc, spec.Keywords) {
				continue
			}
			matched = append(matched, models.MatchedDocument{Document: doc, Section: section})
		}
	}

	// ISO dates compare correctly as strings; newest first, stable so
	// same-day documents keep their portal order.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date > matched[j].Date
	})

	if spec.DateFilter.Kind == models.DateFilterLatest && len(matched) > 0 {
		matched = narrowToLatest(matched, spec.DocumentType)
	}

	return matched
}

// matchesDateFilter evaluates a date predicate against an ISO date string.
// The latest kind admits everything; narrowing happens after the sort.
func matchesDateFilter(date string, filter models.DateFilter) bool {
	switch filter.Kind {
	case models.DateFilterSpecific:
		return date == filter.DateStart
	case models.DateFilterBefore:
		return date <= filter.DateEnd
	case models.DateFilterAfter:
		return date >= filter.DateStart
	case models.DateFilterRange:
		return date >= filter.DateStart && date <= filter.DateEnd
	default:
		return true
	}
}

// matchesKeywords reports whether any keyword occurs in the document's
// description, case-insensitively. An empty keyword list matches everything.
func matchesKeywords(doc models.Document, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	desc := strings.ToLower(doc.Description)
	for _, kw := range keywords {
		if strings.Contains(desc, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// narrowToLatest reduces a date-sorted match list to the newest documents.
// With a concrete section requested, that is the single newest document;
// with any, the newest document of each section that has matches.
func narrowToLatest(matched []models.MatchedDocument, docType models.Section) []models.MatchedDocument {
	if docType != models.SectionAny {
		return matched[:1]
	}

	seen := make(map[models.Section]bool, len(models.Sections))
	var latest []models.MatchedDocument
	for _, m := range matched {
		if seen[m.Section] {
			continue
		}
		seen[m.Section] = true
		latest = append(latest, m)
	}
	return latest
}
