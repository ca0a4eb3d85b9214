package models

import "time"

// Analysis holds the LLM analysis of a single extracted document
type Analysis struct {
	DocumentID string  `json:"document_id"`
	Section    Section `json:"section"`
	Date       string  `json:"date"`
	Title      string  `json:"title"`       // Short title derived from the description
	Summary    string  `json:"summary"`     // LLM-generated summary of the document text
	KeyChanges string  `json:"key_changes"` // Regulatory changes the document introduces
	Source     string  `json:"source"`      // "llm" or "excerpt" when no model was available
}

// RunResult aggregates one complete pipeline run: the scraped documents,
// per-document analyses, and the combined report.
type RunResult struct {
	ID          string      `json:"id"` // run_{uuid}
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt time.Time   `json:"completed_at"`
	Documents   DocumentSet `json:"documents"`
	Analyses    []Analysis  `json:"analyses"`
	Summary     string      `json:"summary"` // Markdown summary report
	EmailSent   bool        `json:"email_sent"`
	Error       string      `json:"error,omitempty"` // Non-fatal run error, if any
}
