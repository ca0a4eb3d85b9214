package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/models"
)

const sectionPage = `<html><body><table>
	<tr><th>Date</th><th>Subject</th><th>Attachment</th></tr>
	<tr><td>15/03/2024</td><td>Amendment to import policy</td><td><a href="/uploads/n45.pdf">Download</a></td></tr>
	<tr><td>20/03/2024</td><td>Export quota revision</td><td><a href="/uploads/n44.pdf">Download</a></td></tr>
</table></body></html>`

func newScraperConfig(serverURL string) *common.PortalConfig {
	return &common.PortalConfig{
		NotificationsURL:  serverURL + "/notifications",
		PublicNoticesURL:  serverURL + "/public-notices",
		CircularsURL:      serverURL + "/circulars",
		UserAgent:         "vigilo-test",
		RequestTimeout:    5 * time.Second,
		RateLimit:         time.Millisecond,
		EnableJavaScript:  false,
		MaxRowsPerSection: 50,
	}
}

func TestScrapeSections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sectionPage))
	}))
	defer server.Close()

	scraper := NewScraper(newScraperConfig(server.URL), arbor.NewLogger())
	defer scraper.Close()

	docs, err := scraper.ScrapeSections(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 6, docs.Count())

	for _, section := range models.Sections {
		require.Len(t, docs[section], 2)
		for _, doc := range docs[section] {
			assert.NotEmpty(t, doc.ID)
			require.NotNil(t, doc.FetchedAt)
			assert.WithinDuration(t, time.Now(), *doc.FetchedAt, time.Minute)
		}
	}
}

func TestScrapeSections_FailedSectionDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/circulars" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sectionPage))
	}))
	defer server.Close()

	scraper := NewScraper(newScraperConfig(server.URL), arbor.NewLogger())
	defer scraper.Close()

	docs, err := scraper.ScrapeSections(context.Background())

	require.NoError(t, err)
	assert.Len(t, docs[models.SectionNotifications], 2)
	assert.Empty(t, docs[models.SectionCirculars])
}

func TestScrapeSections_AllSectionsFailing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := NewScraper(newScraperConfig(server.URL), arbor.NewLogger())
	defer scraper.Close()

	_, err := scraper.ScrapeSections(context.Background())
	assert.Error(t, err)
}

func TestScrapeSections_RowCapApplied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sectionPage))
	}))
	defer server.Close()

	cfg := newScraperConfig(server.URL)
	cfg.MaxRowsPerSection = 1

	scraper := NewScraper(cfg, arbor.NewLogger())
	defer scraper.Close()

	docs, err := scraper.ScrapeSections(context.Background())

	require.NoError(t, err)
	for _, section := range models.Sections {
		assert.Len(t, docs[section], 1)
	}
}
