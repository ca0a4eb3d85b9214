package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/ternarybob/vigilo/internal/services/analysis"
	"github.com/ternarybob/vigilo/internal/services/pdf"
	badgerstorage "github.com/ternarybob/vigilo/internal/storage/badger"
)

type fakeScraper struct {
	docs models.DocumentSet
	err  error
}

func (f *fakeScraper) ScrapeSections(ctx context.Context) (models.DocumentSet, error) {
	return f.docs, f.err
}
func (f *fakeScraper) Close() error { return nil }

type fakeExtractor struct {
	text        string
	downloadErr error
}

func (f *fakeExtractor) Download(ctx context.Context, url, filename string) (string, error) {
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return "/tmp/" + filename, nil
}

func (f *fakeExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	return f.text, nil
}

type fakeMailer struct {
	configured bool
	sent       []string
	sendErr    error
}

func (f *fakeMailer) IsConfigured() bool { return f.configured }

func (f *fakeMailer) SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	return f.SendEmailWithAttachments(ctx, to, subject, htmlBody, textBody, nil)
}

func (f *fakeMailer) SendEmailWithAttachments(ctx context.Context, to, subject, htmlBody, textBody string, attachments []interfaces.MailAttachment) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

func scrapedDocs() models.DocumentSet {
	return models.DocumentSet{
		models.SectionNotifications: {
			{ID: "n1", Date: "2024-03-01", Description: "Import restrictions", Attachment: "https://example.gov.in/n1.pdf"},
		},
		models.SectionPublicNotices: {},
		models.SectionCirculars: {
			{ID: "c1", Date: "2024-03-10", Description: "Duty drawback clarification", Attachment: "https://example.gov.in/c1.pdf"},
		},
	}
}

func newTestService(t *testing.T, scraper interfaces.PortalScraper, extractor interfaces.PDFExtractor, mail interfaces.Mailer) (*Service, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = t.TempDir()
	cfg.Storage.Attachments = t.TempDir()
	cfg.SMTP.Recipients = []string{"ops@example.com"}

	storage, err := badgerstorage.NewManager(logger, &cfg.Storage.Badger)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	service := NewService(
		cfg,
		scraper,
		storage,
		extractor,
		analysis.NewService(nil, logger),
		pdf.NewService(logger),
		mail,
		logger,
	)
	return service, storage
}

func TestRun_FullCycle(t *testing.T) {
	scraper := &fakeScraper{docs: scrapedDocs()}
	extractor := &fakeExtractor{text: strings.Repeat("Regulatory content extracted from the PDF. ", 10)}
	mail := &fakeMailer{configured: true}

	service, storage := newTestService(t, scraper, extractor, mail)

	run, err := service.Run(context.Background(), Options{SendEmail: true})

	require.NoError(t, err)
	assert.Empty(t, run.Error)
	assert.True(t, strings.HasPrefix(run.ID, "run_"))
	assert.Equal(t, 2, run.Documents.Count())
	assert.Len(t, run.Analyses, 2)
	assert.NotEmpty(t, run.Summary)
	assert.True(t, run.EmailSent)
	assert.Equal(t, []string{"ops@example.com"}, mail.sent)
	assert.False(t, run.CompletedAt.IsZero())

	// Documents persisted
	stored, err := storage.DocumentStorage().GetDocuments(models.SectionNotifications)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].Text)

	// Run persisted
	saved, err := storage.RunStorage().GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, saved.ID)
}

func TestRun_ScrapeFailureRecorded(t *testing.T) {
	scraper := &fakeScraper{err: fmt.Errorf("portal unreachable")}
	service, _ := newTestService(t, scraper, &fakeExtractor{}, &fakeMailer{})

	run, err := service.Run(context.Background(), Options{})

	require.NoError(t, err)
	assert.Contains(t, run.Error, "portal unreachable")
	assert.Equal(t, 0, run.Documents.Count())
	assert.False(t, run.EmailSent)
}

func TestRun_DownloadFailureDegrades(t *testing.T) {
	scraper := &fakeScraper{docs: scrapedDocs()}
	extractor := &fakeExtractor{downloadErr: fmt.Errorf("404")}
	service, _ := newTestService(t, scraper, extractor, &fakeMailer{})

	run, err := service.Run(context.Background(), Options{})

	require.NoError(t, err)
	// Documents survive without text; nothing to analyze
	assert.Equal(t, 2, run.Documents.Count())
	assert.Empty(t, run.Analyses)
}

func TestRun_NoEmailWhenUnconfigured(t *testing.T) {
	scraper := &fakeScraper{docs: scrapedDocs()}
	mail := &fakeMailer{configured: false}
	service, _ := newTestService(t, scraper, &fakeExtractor{text: "short"}, mail)

	run, err := service.Run(context.Background(), Options{SendEmail: true})

	require.NoError(t, err)
	assert.False(t, run.EmailSent)
	assert.Empty(t, mail.sent)
}

func TestRun_RecipientOverride(t *testing.T) {
	scraper := &fakeScraper{docs: scrapedDocs()}
	mail := &fakeMailer{configured: true}
	service, _ := newTestService(t, scraper, &fakeExtractor{}, mail)

	_, err := service.Run(context.Background(), Options{
		SendEmail:  true,
		Recipients: []string{"other@example.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"other@example.com"}, mail.sent)
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		name     string
		doc      models.Document
		expected string
	}{
		{
			name:     "from URL",
			doc:      models.Document{ID: "d1", Attachment: "https://example.gov.in/uploads/n45.pdf"},
			expected: "n45.pdf",
		},
		{
			name:     "query stripped",
			doc:      models.Document{ID: "d1", Attachment: "https://example.gov.in/n45.pdf?dl=1"},
			expected: "n45.pdf",
		},
		{
			name:     "extensionless falls back to ID",
			doc:      models.Document{ID: "d1", Attachment: "https://example.gov.in/download"},
			expected: "d1.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, attachmentFilename(&tt.doc))
		})
	}
}
