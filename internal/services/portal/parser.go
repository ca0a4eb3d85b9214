package portal

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/vigilo/internal/models"
)

// Column header keywords for locating the date, description, and attachment
// columns in a portal listing table. Header text varies across sections.
var (
	dateHeaderKeywords   = []string{"date", "dated", "dt"}
	descHeaderKeywords   = []string{"subject", "description", "desc", "title", "regarding"}
	attachHeaderKeywords = []string{"attach", "attachment", "doc", "document", "file", "pdf", "download"}
)

// Portal tables inconsistently format dates; these cover the observed shapes
var rowDateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2.1.06",
	"2006-01-02",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseSectionTable extracts documents from a portal section page. The first
// table on the page is taken as the listing; its header row locates the
// date, description, and attachment columns with positional fallbacks.
// Rows missing any of the three fields are skipped. Results come back
// sorted newest first.
func ParseSectionTable(doc *goquery.Document, baseURL string) ([]models.Document, error) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found on page")
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("no rows found in table")
	}

	var headers []string
	rows.First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(cell.Text()))
	})

	dateIdx := findColumn(headers, dateHeaderKeywords)
	descIdx := findColumn(headers, descHeaderKeywords)
	attachIdx := findColumn(headers, attachHeaderKeywords)

	// Positional fallbacks matching the portal's usual column layout
	if dateIdx < 0 {
		dateIdx = fallbackIndex(len(headers), 2, 0)
	}
	if descIdx < 0 {
		descIdx = fallbackIndex(len(headers), 3, 0)
	}
	if attachIdx < 0 {
		attachIdx = fallbackIndex(len(headers), 4, len(headers)-1)
	}

	maxIdx := dateIdx
	if descIdx > maxIdx {
		maxIdx = descIdx
	}
	if attachIdx > maxIdx {
		maxIdx = attachIdx
	}

	var documents []models.Document
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() <= maxIdx {
			return
		}

		dateText := strings.TrimSpace(cells.Eq(dateIdx).Text())
		description := strings.TrimSpace(cells.Eq(descIdx).Text())
		attachment := extractAttachmentLink(cells.Eq(attachIdx), baseURL)

		if dateText == "" || description == "" || attachment == "" {
			return
		}

		documents = append(documents, models.Document{
			Date:        normalizeRowDate(dateText),
			Description: description,
			Attachment:  attachment,
		})
	})

	sort.SliceStable(documents, func(i, j int) bool {
		return documents[i].Date > documents[j].Date
	})

	return documents, nil
}

// findColumn returns the index of the first header containing any keyword,
// or -1 when no header matches.
func findColumn(headers []string, keywords []string) int {
	for i, header := range headers {
		lower := strings.ToLower(header)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

// fallbackIndex returns preferred when the table is wide enough, otherwise
// the alternative clamped to a valid index.
func fallbackIndex(columnCount, preferred, alternative int) int {
	if columnCount > preferred {
		return preferred
	}
	if alternative < 0 {
		return 0
	}
	return alternative
}

// extractAttachmentLink pulls the first anchor href from the cell, resolving
// relative references against the section base URL.
func extractAttachmentLink(cell *goquery.Selection, baseURL string) string {
	href, exists := cell.Find("a").First().Attr("href")
	href = strings.TrimSpace(href)
	if !exists || href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}

// normalizeRowDate parses a table cell date into ISO YYYY-MM-DD form.
// Unparseable values pass through unchanged so downstream filtering can
// still match on exact text.
func normalizeRowDate(dateText string) string {
	for _, layout := range rowDateLayouts {
		if parsed, err := time.Parse(layout, dateText); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return dateText
}
