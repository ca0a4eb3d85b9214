package models

import (
	"strings"
	"time"
)

// Section identifies a portal document category
type Section string

const (
	// SectionNotifications holds trade notifications
	SectionNotifications Section = "Notifications"
	// SectionPublicNotices holds public notices
	SectionPublicNotices Section = "Public Notices"
	// SectionCirculars holds circulars
	SectionCirculars Section = "Circulars"

	// SectionAny is the wildcard matching every section in a search
	SectionAny Section = "any"
)

// Sections lists the concrete portal sections in display order
var Sections = []Section{SectionNotifications, SectionPublicNotices, SectionCirculars}

// ParseSection maps a label to a known section, case-insensitively.
// Unknown labels map to SectionAny.
func ParseSection(label string) Section {
	normalized := strings.TrimSpace(label)
	for _, s := range Sections {
		if strings.EqualFold(string(s), normalized) {
			return s
		}
	}
	return SectionAny
}

// Document represents one regulatory document scraped from the portal.
// Date is an ISO YYYY-MM-DD string so lexical ordering matches chronological
// ordering. Documents are immutable inputs to the query core.
type Document struct {
	ID          string `json:"id,omitempty"` // doc_{uuid}, assigned at persistence time
	Date        string `json:"date"`         // ISO YYYY-MM-DD
	Description string `json:"description"`  // Free-text summary from the portal table
	Attachment  string `json:"attachment"`   // URL or local path of the source PDF; opaque to the core

	// Extraction state, populated by the pipeline
	Text      string     `json:"text,omitempty"`       // Extracted PDF text
	FetchedAt *time.Time `json:"fetched_at,omitempty"` // When the attachment was downloaded
}

// DocumentSet groups documents by section, the shape the portal scraper
// produces and the query core consumes.
type DocumentSet map[Section][]Document

// MatchedDocument is a document annotated with its originating section,
// produced by the filter stage.
type MatchedDocument struct {
	Document
	Section Section `json:"section"`
}

// Count returns the total number of documents across all sections
func (s DocumentSet) Count() int {
	total := 0
	for _, docs := range s {
		total += len(docs)
	}
	return total
}
