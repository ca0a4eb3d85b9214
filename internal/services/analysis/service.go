package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
)

// minTextLength is the minimum extracted text length worth sending to the
// model. Scanned or image-only PDFs usually fall below this.
const minTextLength = 100

// excerptLength bounds the fallback excerpt taken when no model is available
const excerptLength = 500

// Service analyzes extracted document text with the configured LLM. Without
// a model it degrades to excerpt-based analyses so the pipeline still
// produces a readable report.
type Service struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewService creates an analysis service. llm may be nil.
func NewService(llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llm,
		logger: logger,
	}
}

// AnalyzeDocument produces an analysis of one document's extracted text.
// Errors from the model degrade to an excerpt analysis rather than failing.
func (s *Service) AnalyzeDocument(ctx context.Context, doc models.Document, section models.Section) models.Analysis {
	analysis := models.Analysis{
		DocumentID: doc.ID,
		Section:    section,
		Date:       doc.Date,
		Title:      deriveTitle(doc.Description),
	}

	text := strings.TrimSpace(doc.Text)
	if len(text) < minTextLength {
		analysis.Summary = "The document text was too short or empty for analysis."
		analysis.Source = "excerpt"
		return analysis
	}

	if s.llm == nil {
		analysis.Summary = excerpt(text)
		analysis.Source = "excerpt"
		return analysis
	}

	response, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: analysisSystemPrompt(section, doc.Date)},
		{Role: "user", Content: fmt.Sprintf("Please analyze the following DGFT %s dated %s:\n\n%s", section, doc.Date, text)},
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("document_id", doc.ID).
			Msg("LLM analysis failed, using excerpt")
		analysis.Summary = excerpt(text)
		analysis.Source = "excerpt"
		return analysis
	}

	analysis.Summary = response
	analysis.KeyChanges = extractSection(response, "Key Changes")
	analysis.Source = "llm"
	return analysis
}

// AnalyzeDocuments analyzes every document in the set that carries extracted
// text. Documents without text are skipped.
func (s *Service) AnalyzeDocuments(ctx context.Context, docs models.DocumentSet) []models.Analysis {
	var analyses []models.Analysis
	for _, section := range models.Sections {
		for _, doc := range docs[section] {
			if strings.TrimSpace(doc.Text) == "" {
				continue
			}
			analyses = append(analyses, s.AnalyzeDocument(ctx, doc, section))
		}
	}

	s.logger.Info().
		Int("analyzed", len(analyses)).
		Msg("Document analysis completed")

	return analyses
}

// SummaryReport produces an executive summary of the analyses in markdown.
// With no model available, it falls back to a plain per-document listing.
func (s *Service) SummaryReport(ctx context.Context, analyses []models.Analysis) string {
	if len(analyses) == 0 {
		return "No documents analyzed."
	}

	listing := buildListing(analyses)

	if s.llm == nil {
		return listing
	}

	response, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: "Please create an executive summary based on the following document analyses:\n\n" + listing},
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Summary report generation failed, using listing")
		return listing
	}

	return response
}

func analysisSystemPrompt(section models.Section, date string) string {
	return fmt.Sprintf(`You are an expert in analyzing Indian trade regulatory documents from the Directorate General of Foreign Trade (DGFT).
Your task is to analyze the provided %s dated %s and extract key information and insights.

For your analysis, focus on:
1. The main purpose of this %s
2. Key policy changes or announcements
3. Which industries or sectors are affected
4. Effective dates for implementation
5. Any compliance requirements or deadlines
6. Any relaxations or restrictions being introduced
7. Potential impact on trade and businesses

Structure your response in the following format:

## Summary
[A concise 2-3 sentence summary of the key points]

## Key Changes
[List bullet points of key policy changes]

## Affected Sectors
[List the industries or sectors affected]

## Important Dates
[List any implementation dates, deadlines, or effective dates]

## Compliance Requirements
[Describe what businesses need to do to comply]

Be precise and focus on factual information rather than speculation.
If information for a section is not available, state "Not specified in the document."`, section, date, section)
}

const summarySystemPrompt = `You are an expert in summarizing regulatory updates. Create a concise executive summary
of recent DGFT regulatory updates based on the analyzed documents. Focus on the most
significant changes and their potential impacts on trade and businesses.

Your summary should include:
1. Overview of recent regulatory activity
2. Key themes or trends across documents
3. Most significant changes and their implications
4. Recommended actions for businesses

Keep your summary clear, concise, and business-focused.`

// buildListing formats analyses as a markdown document list with short
// previews of each analysis.
func buildListing(analyses []models.Analysis) string {
	var sb strings.Builder
	sb.WriteString("# Regulatory Update Report\n\n")
	for _, a := range analyses {
		sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", a.Section, a.Date, a.Title))
		preview := previewLines(a.Summary, 5)
		if preview != "" {
			sb.WriteString("  " + preview + "\n")
		}
	}
	return sb.String()
}

// deriveTitle shortens a portal description into a report title
func deriveTitle(description string) string {
	title := strings.TrimSpace(description)
	if len(title) > 120 {
		title = title[:117] + "..."
	}
	return title
}

// excerpt returns the head of the document text for no-model analyses
func excerpt(text string) string {
	if len(text) <= excerptLength {
		return text
	}
	return text[:excerptLength] + "..."
}

// previewLines returns the first n lines of text joined with spaces
func previewLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	joined := strings.Join(lines, " ")
	return strings.TrimSpace(joined)
}

// extractSection pulls the body of a "## <name>" markdown section from an
// analysis response. Returns an empty string when the section is absent.
func extractSection(markdown, name string) string {
	lines := strings.Split(markdown, "\n")
	var body []string
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			if inSection {
				break
			}
			inSection = strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(trimmed, "## ")), name)
			continue
		}
		if inSection {
			body = append(body, line)
		}
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}
