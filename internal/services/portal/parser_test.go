package portal

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseSectionTable(t *testing.T) {
	html := `<html><body><table>
		<tr><th>S.No</th><th>Notification No</th><th>Date</th><th>Subject</th><th>Attachment</th></tr>
		<tr><td>1</td><td>45/2024</td><td>15/03/2024</td><td>Amendment to import policy</td><td><a href="/uploads/n45.pdf">Download</a></td></tr>
		<tr><td>2</td><td>44/2024</td><td>20/03/2024</td><td>Export quota revision</td><td><a href="https://example.gov.in/n44.pdf">Download</a></td></tr>
		<tr><td>3</td><td>43/2024</td><td></td><td>Undated row</td><td><a href="/uploads/n43.pdf">Download</a></td></tr>
	</table></body></html>`

	docs, err := ParseSectionTable(parseHTML(t, html), "https://example.gov.in/CP/?opt=notification")

	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Sorted newest first
	assert.Equal(t, "2024-03-20", docs[0].Date)
	assert.Equal(t, "Export quota revision", docs[0].Description)
	assert.Equal(t, "https://example.gov.in/n44.pdf", docs[0].Attachment)

	assert.Equal(t, "2024-03-15", docs[1].Date)
	assert.Equal(t, "Amendment to import policy", docs[1].Description)
	// Root-relative link resolved against the host, not the section path
	assert.Equal(t, "https://example.gov.in/uploads/n45.pdf", docs[1].Attachment)
}

func TestExtractAttachmentLink(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		baseURL  string
		expected string
	}{
		{
			name:     "absolute passes through",
			href:     "https://other.gov.in/doc.pdf",
			baseURL:  "https://example.gov.in/CP/?opt=notification",
			expected: "https://other.gov.in/doc.pdf",
		},
		{
			name:     "root-relative resolves to host root",
			href:     "/uploads/doc.pdf",
			baseURL:  "https://example.gov.in/CP/?opt=notification",
			expected: "https://example.gov.in/uploads/doc.pdf",
		},
		{
			name:     "relative resolves against section path",
			href:     "doc.pdf",
			baseURL:  "https://example.gov.in/CP/?opt=notification",
			expected: "https://example.gov.in/CP/doc.pdf",
		},
		{
			name:     "relative with subdirectory",
			href:     "uploads/doc.pdf",
			baseURL:  "https://example.gov.in/CP/notifications",
			expected: "https://example.gov.in/CP/uploads/doc.pdf",
		},
		{
			name:     "missing href",
			href:     "",
			baseURL:  "https://example.gov.in",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseHTML(t, `<html><body><table><tr><td><a href="`+tt.href+`">view</a></td></tr></table></body></html>`)
			assert.Equal(t, tt.expected, extractAttachmentLink(doc.Find("td").First(), tt.baseURL))
		})
	}
}

func TestParseSectionTable_HeaderVariants(t *testing.T) {
	html := `<html><body><table>
		<tr><th>Dt.</th><th>Regarding</th><th>PDF</th></tr>
		<tr><td>01.02.2024</td><td>Clarification on duty drawback</td><td><a href="/c1.pdf">view</a></td></tr>
	</table></body></html>`

	docs, err := ParseSectionTable(parseHTML(t, html), "https://example.gov.in/CP")

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2024-02-01", docs[0].Date)
	assert.Equal(t, "Clarification on duty drawback", docs[0].Description)
}

func TestParseSectionTable_RowsMissingFieldsSkipped(t *testing.T) {
	html := `<html><body><table>
		<tr><th>Date</th><th>Subject</th><th>Attachment</th></tr>
		<tr><td>15/03/2024</td><td>No link in this row</td><td>plain text</td></tr>
		<tr><td>16/03/2024</td><td></td><td><a href="/a.pdf">pdf</a></td></tr>
		<tr><td>17/03/2024</td><td>Complete row</td><td><a href="/b.pdf">pdf</a></td></tr>
	</table></body></html>`

	docs, err := ParseSectionTable(parseHTML(t, html), "https://example.gov.in")

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Complete row", docs[0].Description)
}

func TestParseSectionTable_NoTable(t *testing.T) {
	_, err := ParseSectionTable(parseHTML(t, "<html><body><p>maintenance</p></body></html>"), "https://example.gov.in")
	assert.Error(t, err)
}

func TestNormalizeRowDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "slash", input: "15/03/2024", expected: "2024-03-15"},
		{name: "slash two digit year", input: "15/03/24", expected: "2024-03-15"},
		{name: "dash", input: "05-11-2023", expected: "2023-11-05"},
		{name: "dot", input: "01.02.2024", expected: "2024-02-01"},
		{name: "already ISO", input: "2024-03-15", expected: "2024-03-15"},
		{name: "long month", input: "15 March 2024", expected: "2024-03-15"},
		{name: "short month", input: "Mar 15, 2024", expected: "2024-03-15"},
		{name: "unparseable passes through", input: "n/a", expected: "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeRowDate(tt.input))
		})
	}
}
