package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/models"
	"golang.org/x/time/rate"
)

// Scraper collects document listings from the trade-regulation portal.
// The portal renders its tables with JavaScript, so a headless Chrome
// instance is the primary fetch path; a plain HTTP GET is the fallback
// when Chrome is unavailable or rendering fails.
type Scraper struct {
	config     *common.PortalConfig
	logger     arbor.ILogger
	httpClient *http.Client
	limiter    *rate.Limiter

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
}

// NewScraper creates a portal scraper. Chrome is started lazily on the
// first JavaScript fetch so a scraper used only for HTTP fallback never
// launches a browser.
func NewScraper(config *common.PortalConfig, logger arbor.ILogger) *Scraper {
	return &Scraper{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(config.RateLimit), 1),
	}
}

// sectionURLs maps each portal section to its configured listing URL
func (s *Scraper) sectionURLs() map[models.Section]string {
	return map[models.Section]string{
		models.SectionNotifications: s.config.NotificationsURL,
		models.SectionPublicNotices: s.config.PublicNoticesURL,
		models.SectionCirculars:     s.config.CircularsURL,
	}
}

// ScrapeSections collects the document listing of every portal section.
// A section that fails to fetch or parse yields an empty list rather than
// failing the whole scrape.
func (s *Scraper) ScrapeSections(ctx context.Context) (models.DocumentSet, error) {
	urls := s.sectionURLs()
	result := make(models.DocumentSet, len(urls))

	fetchedAt := time.Now()
	for _, section := range models.Sections {
		url := urls[section]
		if url == "" {
			s.logger.Warn().Str("section", string(section)).Msg("No URL configured for section, skipping")
			result[section] = []models.Document{}
			continue
		}

		docs, err := s.scrapeSection(ctx, section, url)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("section", string(section)).
				Str("url", url).
				Msg("Failed to scrape section")
			result[section] = []models.Document{}
			continue
		}

		for i := range docs {
			docs[i].ID = uuid.New().String()
			docs[i].FetchedAt = &fetchedAt
		}
		result[section] = docs

		s.logger.Info().
			Str("section", string(section)).
			Int("documents", len(docs)).
			Msg("Section scraped")
	}

	if result.Count() == 0 {
		return result, fmt.Errorf("no documents collected from any section")
	}

	return result, nil
}

func (s *Scraper) scrapeSection(ctx context.Context, section models.Section, url string) ([]models.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var html string
	var err error

	if s.config.EnableJavaScript {
		html, err = s.fetchRendered(ctx, url)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("section", string(section)).
				Msg("JavaScript rendering failed, falling back to plain HTTP")
			html, err = s.fetchPlain(ctx, url)
		}
	} else {
		html, err = s.fetchPlain(ctx, url)
	}
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	documents, err := ParseSectionTable(doc, url)
	if err != nil {
		return nil, fmt.Errorf("parse section table: %w", err)
	}

	if s.config.MaxRowsPerSection > 0 && len(documents) > s.config.MaxRowsPerSection {
		documents = documents[:s.config.MaxRowsPerSection]
	}

	return documents, nil
}

// fetchRendered loads the page in headless Chrome, waits for JavaScript to
// populate the listing table, and returns the rendered HTML.
func (s *Scraper) fetchRendered(ctx context.Context, url string) (string, error) {
	browserCtx, err := s.ensureBrowser()
	if err != nil {
		return "", err
	}

	timeoutCtx, cancel := context.WithTimeout(browserCtx, s.config.RequestTimeout)
	defer cancel()

	var html string
	err = chromedp.Run(timeoutCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(s.config.JavaScriptWaitTime),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp render: %w", err)
	}

	return html, nil
}

// fetchPlain retrieves the page with a plain HTTP GET
func (s *Scraper) fetchPlain(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return string(body), nil
}

// ensureBrowser starts the headless Chrome instance on first use
func (s *Scraper) ensureBrowser() (context.Context, error) {
	if s.browserCtx != nil {
		return s.browserCtx, nil
	}

	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(s.config.UserAgent),
	)

	s.allocatorCtx, s.allocatorCancel = chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	s.browserCtx, s.browserCancel = chromedp.NewContext(s.allocatorCtx)

	// Startup probe so a missing Chrome binary surfaces here, not mid-scrape
	testCtx, testCancel := context.WithTimeout(s.browserCtx, 30*time.Second)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		s.closeBrowser()
		return nil, fmt.Errorf("browser failed startup test: %w", err)
	}

	s.logger.Debug().Msg("Headless browser started")
	return s.browserCtx, nil
}

func (s *Scraper) closeBrowser() {
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
		s.browserCtx = nil
	}
	if s.allocatorCancel != nil {
		s.allocatorCancel()
		s.allocatorCancel = nil
		s.allocatorCtx = nil
	}
}

// Close shuts down the headless browser if one was started
func (s *Scraper) Close() error {
	s.closeBrowser()
	return nil
}
