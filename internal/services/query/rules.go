package query

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/vigilo/internal/models"
)

// Rule-based query interpretation. This is the deterministic fallback path:
// it never fails, and any parsing anomaly degrades to the wildcard spec
// (all sections, latest, no keywords).

var (
	// Date token patterns, pooled across the query in order of appearance
	reDateISO   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	reDateSlash = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	reDateLong  = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`)

	// Alphabetic runs of length >= 3 are keyword candidates
	reWord = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

var monthNumbers = map[string]string{
	"January": "01", "February": "02", "March": "03", "April": "04",
	"May": "05", "June": "06", "July": "07", "August": "08",
	"September": "09", "October": "10", "November": "11", "December": "12",
}

// stopwords are common English function words and domain boilerplate that
// never make useful search keywords.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {},
	"about": {}, "like": {}, "through": {}, "over": {}, "between": {},
	"after": {}, "before": {}, "during": {}, "above": {}, "below": {},
	"under": {}, "please": {}, "find": {}, "get": {}, "show": {},
	"notification": {}, "notifications": {}, "notice": {}, "notices": {},
	"circular": {}, "circulars": {}, "document": {}, "documents": {},
	"latest": {}, "recent": {}, "new": {}, "date": {}, "dated": {},
	"regarding": {}, "what": {}, "are": {}, "most": {},
}

const maxKeywords = 5

// ruleBasedInterpretation converts a raw query into a search spec using
// substring triggers and regex date extraction. Always returns a valid spec.
func ruleBasedInterpretation(queryText string) *models.SearchSpec {
	spec := models.DefaultSpec()
	query := strings.ToLower(queryText)

	// Document type by trigger word. "notification" is checked before
	// "notice" so queries mentioning both resolve to Notifications.
	switch {
	case strings.Contains(query, "notification"):
		spec.DocumentType = models.SectionNotifications
	case strings.Contains(query, "notice"):
		spec.DocumentType = models.SectionPublicNotices
	case strings.Contains(query, "circular"):
		spec.DocumentType = models.SectionCirculars
	}

	// Pool date tokens from all three patterns in order of appearance
	dates := extractDateTokens(queryText)

	switch {
	case len(dates) == 1:
		date := normalizeDate(dates[0])
		switch {
		case containsAny(query, "before", "prior", "earlier"):
			spec.DateFilter = models.BeforeFilter(date)
		case containsAny(query, "after", "since", "later"):
			spec.DateFilter = models.AfterFilter(date)
		default:
			spec.DateFilter = models.SpecificFilter(date)
		}
	case len(dates) >= 2:
		spec.DateFilter = models.RangeFilter(normalizeDate(dates[0]), normalizeDate(dates[1]))
	}

	// A recency trigger overrides any date-derived kind, matching the user's
	// stated intent ("latest circulars since 2023" means the newest one).
	if containsAny(query, "latest", "recent", "newest") {
		spec.DateFilter = models.LatestFilter()
	}

	spec.Keywords = extractKeywords(query)

	return spec
}

// extractDateTokens collects raw date tokens across all patterns. Matches
// are pooled per pattern in order of appearance within each pattern.
func extractDateTokens(queryText string) []string {
	var dates []string
	dates = append(dates, reDateISO.FindAllString(queryText, -1)...)
	dates = append(dates, reDateSlash.FindAllString(queryText, -1)...)
	dates = append(dates, reDateLong.FindAllString(queryText, -1)...)
	return dates
}

// normalizeDate converts a raw date token to ISO YYYY-MM-DD form.
// Unparseable input defaults to the current date.
func normalizeDate(token string) string {
	if reDateISO.MatchString(token) {
		return token
	}

	// DD/MM/YYYY -> YYYY-MM-DD
	if reDateSlash.MatchString(token) {
		parts := strings.Split(token, "/")
		if len(parts) == 3 {
			return fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0])
		}
	}

	// "Month DD, YYYY" -> YYYY-MM-DD
	for month, num := range monthNumbers {
		if !strings.Contains(token, month) {
			continue
		}
		re := regexp.MustCompile(month + `\s+(\d{1,2}),\s+(\d{4})`)
		if m := re.FindStringSubmatch(token); m != nil {
			day := m[1]
			if len(day) == 1 {
				day = "0" + day
			}
			return fmt.Sprintf("%s-%s-%s", m[2], num, day)
		}
	}

	return time.Now().Format("2006-01-02")
}

// extractKeywords tokenizes the lowercased query into alphabetic runs,
// drops stopwords, and keeps the first few survivors in order of appearance.
func extractKeywords(query string) []string {
	keywords := []string{}
	for _, word := range reWord.FindAllString(query, -1) {
		if _, stop := stopwords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) >= maxKeywords {
			break
		}
	}
	return keywords
}

// containsAny reports whether s contains any of the given substrings
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
