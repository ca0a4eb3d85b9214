package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/ternarybob/vigilo/internal/services/analysis"
	"github.com/ternarybob/vigilo/internal/services/mailer"
	"github.com/ternarybob/vigilo/internal/services/pdf"
)

// Options control a single pipeline run
type Options struct {
	SendEmail  bool
	Recipients []string // Overrides the configured recipient list when set
}

// Service orchestrates a complete monitoring run: scrape the portal,
// persist the listings, download and extract attachments, analyze the
// documents, and deliver the report. Every stage degrades rather than
// aborting the run; the final RunResult records what succeeded.
type Service struct {
	config    *common.Config
	scraper   interfaces.PortalScraper
	storage   interfaces.StorageManager
	extractor interfaces.PDFExtractor
	analyzer  *analysis.Service
	reports   *pdf.Service
	mail      interfaces.Mailer
	logger    arbor.ILogger
}

// NewService creates a pipeline service
func NewService(
	config *common.Config,
	scraper interfaces.PortalScraper,
	storage interfaces.StorageManager,
	extractor interfaces.PDFExtractor,
	analyzer *analysis.Service,
	reports *pdf.Service,
	mail interfaces.Mailer,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:    config,
		scraper:   scraper,
		storage:   storage,
		extractor: extractor,
		analyzer:  analyzer,
		reports:   reports,
		mail:      mail,
		logger:    logger,
	}
}

// Run executes one complete monitoring cycle and persists its result
func (s *Service) Run(ctx context.Context, opts Options) (*models.RunResult, error) {
	run := &models.RunResult{
		ID:        fmt.Sprintf("run_%s", uuid.New().String()),
		StartedAt: time.Now(),
	}

	s.logger.Info().Str("run_id", run.ID).Msg("Pipeline run started")

	docs, err := s.scraper.ScrapeSections(ctx)
	if err != nil {
		run.Error = fmt.Sprintf("scrape: %v", err)
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("Portal scrape failed")
	}
	if docs == nil {
		docs = models.DocumentSet{}
	}

	s.enrichWithText(ctx, docs)
	run.Documents = docs

	for _, section := range models.Sections {
		if err := s.storage.DocumentStorage().SaveDocuments(section, docs[section]); err != nil {
			s.logger.Error().
				Err(err).
				Str("section", string(section)).
				Msg("Failed to persist section documents")
		}
	}

	run.Analyses = s.analyzer.AnalyzeDocuments(ctx, docs)
	run.Summary = s.analyzer.SummaryReport(ctx, run.Analyses)

	if opts.SendEmail {
		run.EmailSent = s.deliverReport(ctx, run, opts.Recipients)
	}

	s.cleanupAttachments()

	run.CompletedAt = time.Now()
	if err := s.storage.RunStorage().SaveRun(run); err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("Failed to persist run result")
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Int("documents", run.Documents.Count()).
		Int("analyses", len(run.Analyses)).
		Bool("email_sent", run.EmailSent).
		Dur("duration", run.CompletedAt.Sub(run.StartedAt)).
		Msg("Pipeline run completed")

	return run, nil
}

// enrichWithText downloads each document's attachment and extracts its text
// in place. A failed download or extraction leaves the document without text
// and the run continues.
func (s *Service) enrichWithText(ctx context.Context, docs models.DocumentSet) {
	for _, section := range models.Sections {
		for i := range docs[section] {
			doc := &docs[section][i]
			if doc.Attachment == "" {
				continue
			}

			filename := attachmentFilename(doc)
			path, err := s.extractor.Download(ctx, doc.Attachment, filename)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("url", doc.Attachment).
					Msg("Attachment download failed")
				continue
			}

			text, err := s.extractor.ExtractText(ctx, path)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("path", path).
					Msg("Text extraction failed")
				continue
			}
			doc.Text = text
		}
	}
}

// deliverReport emails the run report to the configured or overridden
// recipients. Returns true when at least one delivery succeeded.
func (s *Service) deliverReport(ctx context.Context, run *models.RunResult, recipients []string) bool {
	if !s.mail.IsConfigured() {
		s.logger.Warn().Msg("SMTP not configured, skipping report email")
		return false
	}

	if len(recipients) == 0 {
		recipients = s.config.SMTP.Recipients
	}
	if len(recipients) == 0 {
		s.logger.Warn().Msg("No report recipients configured")
		return false
	}

	subject := mailer.FormatSubject(run.Analyses)
	htmlBody := mailer.FormatReportHTML(run)
	textBody := mailer.FormatReportText(run)

	var attachments []interfaces.MailAttachment
	if pdfBytes, err := s.reports.ConvertMarkdownToPDF(reportMarkdown(run), "DGFT Regulatory Updates Report"); err == nil {
		attachments = append(attachments, interfaces.MailAttachment{
			Filename:    fmt.Sprintf("dgft-report-%s.pdf", time.Now().Format("2006-01-02")),
			ContentType: "application/pdf",
			Content:     pdfBytes,
		})
	} else {
		s.logger.Warn().Err(err).Msg("Report PDF generation failed, sending without attachment")
	}

	sent := false
	for _, to := range recipients {
		if err := s.mail.SendEmailWithAttachments(ctx, to, subject, htmlBody, textBody, attachments); err != nil {
			s.logger.Error().Err(err).Str("to", to).Msg("Report delivery failed")
			continue
		}
		sent = true
	}

	return sent
}

// reportMarkdown renders the run as a markdown report for PDF conversion
func reportMarkdown(run *models.RunResult) string {
	var sb strings.Builder
	sb.WriteString("# DGFT Regulatory Updates Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated on %s\n\n", time.Now().Format("02 January 2006")))

	sb.WriteString("## Executive Summary\n\n")
	if run.Summary != "" {
		sb.WriteString(run.Summary)
	} else {
		sb.WriteString("No summary available.")
	}
	sb.WriteString("\n\n")

	if run.Documents.Count() > 0 {
		sb.WriteString("## Documents\n\n")
		sb.WriteString("| Date | Section | Subject |\n|------|---------|--------|\n")
		for _, section := range models.Sections {
			for _, doc := range run.Documents[section] {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", doc.Date, section, strings.ReplaceAll(doc.Description, "|", "-")))
			}
		}
	}

	return sb.String()
}

// attachmentFilename derives a stable stored filename from the attachment
// URL, falling back to the document ID for extensionless links.
func attachmentFilename(doc *models.Document) string {
	base := filepath.Base(strings.SplitN(doc.Attachment, "?", 2)[0])
	if base == "" || base == "." || base == "/" || !strings.Contains(base, ".") {
		return doc.ID + ".pdf"
	}
	return base
}

// cleanupAttachments trims the attachment directory to the configured
// retention cap, removing oldest files first.
func (s *Service) cleanupAttachments() {
	maxStored := s.config.Storage.MaxStored
	if maxStored <= 0 {
		return
	}

	dir := s.config.Storage.Attachments
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type fileAge struct {
		path    string
		modTime time.Time
	}
	var files []fileAge
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileAge{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}

	if len(files) <= maxStored {
		return
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for _, f := range files[:len(files)-maxStored] {
		if err := os.Remove(f.path); err != nil {
			s.logger.Warn().Err(err).Str("path", f.path).Msg("Failed to remove old attachment")
		}
	}
}
