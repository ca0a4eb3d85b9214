package interfaces

import (
	"context"

	"github.com/ternarybob/vigilo/internal/models"
)

// PortalScraper fetches the portal's section listings as document records
type PortalScraper interface {
	// ScrapeSections fetches every configured section page and returns the
	// parsed document rows grouped by section. Sections that fail to load are
	// returned empty rather than failing the whole scrape.
	ScrapeSections(ctx context.Context) (models.DocumentSet, error)

	// Close releases browser resources
	Close() error
}

// PDFExtractor downloads attachments and extracts their text content
type PDFExtractor interface {
	// Download fetches an attachment URL to the attachments directory and
	// returns the local file path
	Download(ctx context.Context, url, filename string) (string, error)

	// ExtractText extracts the text content of a PDF file on disk
	ExtractText(ctx context.Context, path string) (string, error)
}
