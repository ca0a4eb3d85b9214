package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ternarybob/vigilo/internal/models"
)

const reportStyle = `body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 800px; margin: 0 auto; padding: 20px; }
h1, h2, h3 { color: #1a5276; }
.summary { background-color: #f8f9fa; padding: 15px; border-left: 4px solid #3498db; margin-bottom: 20px; }
.document { background-color: #f8f9fa; padding: 15px; margin-bottom: 20px; border: 1px solid #ddd; border-radius: 4px; }
.document h3 { margin-top: 0; color: #2874a6; }
.footer { font-size: 12px; color: #777; margin-top: 30px; border-top: 1px solid #eee; padding-top: 10px; }`

// FormatReportHTML renders a run's analyses and executive summary as the
// HTML email body.
func FormatReportHTML(run *models.RunResult) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<style>\n")
	sb.WriteString(reportStyle)
	sb.WriteString("\n</style>\n</head>\n<body>\n<div class=\"container\">\n")
	sb.WriteString("<h1>DGFT Regulatory Updates Report</h1>\n")
	sb.WriteString("<p>This automated report provides an analysis of the latest regulatory updates from the Directorate General of Foreign Trade (DGFT).</p>\n")
	sb.WriteString(fmt.Sprintf("<p><strong>Generated on:</strong> %s</p>\n", time.Now().Format("02 January, 2006 at 15:04")))

	summary := run.Summary
	if summary == "" {
		summary = "No summary available."
	}
	sb.WriteString("<h2>Executive Summary</h2>\n<div class=\"summary\">\n")
	sb.WriteString(strings.ReplaceAll(html.EscapeString(summary), "\n", "<br>\n"))
	sb.WriteString("\n</div>\n")

	if len(run.Analyses) > 0 {
		sb.WriteString("<h2>Document Analysis</h2>\n")
		for _, a := range run.Analyses {
			date := a.Date
			if date == "" {
				date = "N/A"
			}
			sb.WriteString("<div class=\"document\">\n")
			sb.WriteString(fmt.Sprintf("<h3>%s - %s</h3>\n", html.EscapeString(string(a.Section)), html.EscapeString(date)))
			sb.WriteString(fmt.Sprintf("<p><strong>Title:</strong> %s</p>\n", html.EscapeString(a.Title)))
			sb.WriteString("<h4>Analysis</h4>\n<div class=\"analysis\">\n")
			sb.WriteString(strings.ReplaceAll(html.EscapeString(a.Summary), "\n", "<br>\n"))
			sb.WriteString("\n</div>\n</div>\n")
		}
	}

	sb.WriteString("<div class=\"footer\">\n<p>This is an automated report from the DGFT Regulatory Monitor. Please do not reply to this email.</p>\n</div>\n")
	sb.WriteString("</div>\n</body>\n</html>\n")
	return sb.String()
}

// FormatReportText renders a plain text fallback body for mail clients that
// do not display HTML.
func FormatReportText(run *models.RunResult) string {
	var sb strings.Builder
	sb.WriteString("DGFT Regulatory Updates Report\n")
	sb.WriteString(fmt.Sprintf("Generated on: %s\n\n", time.Now().Format("02 January, 2006 at 15:04")))

	sb.WriteString("Executive Summary\n-----------------\n")
	if run.Summary != "" {
		sb.WriteString(run.Summary)
	} else {
		sb.WriteString("No summary available.")
	}
	sb.WriteString("\n\n")

	for _, a := range run.Analyses {
		sb.WriteString(fmt.Sprintf("%s (%s): %s\n", a.Section, a.Date, a.Title))
	}

	return sb.String()
}

// FormatSubject builds the email subject from the analyzed documents
func FormatSubject(analyses []models.Analysis) string {
	if len(analyses) == 0 {
		return "DGFT Regulatory Updates - No New Updates"
	}

	sections := make(map[models.Section]struct{})
	for _, a := range analyses {
		sections[a.Section] = struct{}{}
	}

	today := time.Now().Format("02 Jan 2006")
	plural := "Documents"
	if len(analyses) == 1 {
		plural = "Document"
	}

	if len(sections) == 1 {
		var section models.Section
		for s := range sections {
			section = s
		}
		return fmt.Sprintf("DGFT %s Updates (%s) - %d %s", section, today, len(analyses), plural)
	}

	return fmt.Sprintf("DGFT Regulatory Updates (%s) - %d %s Across %d Categories", today, len(analyses), plural, len(sections))
}
