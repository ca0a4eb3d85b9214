package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// storedDocument is the persisted shape of a scraped document. Section is
// denormalized onto every record so section queries stay simple.
type storedDocument struct {
	ID       string `badgerhold:"key"`
	Section  string `badgerholdIndex:"Section"`
	Document models.Document
}

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// SaveDocuments replaces the stored documents for a section with the given
// list. Each scrape is a full snapshot of the portal listing, so stale rows
// from the previous run are dropped first.
func (s *DocumentStorage) SaveDocuments(section models.Section, docs []models.Document) error {
	if err := s.DeleteSection(section); err != nil {
		return err
	}

	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document ID is required")
		}
		record := storedDocument{
			ID:       doc.ID,
			Section:  string(section),
			Document: doc,
		}
		if err := s.db.Store().Upsert(record.ID, &record); err != nil {
			return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
		}
	}

	s.logger.Debug().
		Str("section", string(section)).
		Int("documents", len(docs)).
		Msg("Section documents saved")

	return nil
}

// GetDocuments returns the stored documents for one section, newest first
func (s *DocumentStorage) GetDocuments(section models.Section) ([]models.Document, error) {
	var records []storedDocument
	err := s.db.Store().Find(&records, badgerhold.Where("Section").Eq(string(section)))
	if err != nil {
		return nil, fmt.Errorf("failed to load documents for section %s: %w", section, err)
	}

	docs := make([]models.Document, 0, len(records))
	for _, record := range records {
		docs = append(docs, record.Document)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Date > docs[j].Date
	})

	return docs, nil
}

// GetAllDocuments returns every stored document grouped by section
func (s *DocumentStorage) GetAllDocuments() (models.DocumentSet, error) {
	result := make(models.DocumentSet, len(models.Sections))
	for _, section := range models.Sections {
		docs, err := s.GetDocuments(section)
		if err != nil {
			return nil, err
		}
		result[section] = docs
	}
	return result, nil
}

// DeleteSection removes all documents for a section
func (s *DocumentStorage) DeleteSection(section models.Section) error {
	err := s.db.Store().DeleteMatching(&storedDocument{}, badgerhold.Where("Section").Eq(string(section)))
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete section %s: %w", section, err)
	}
	return nil
}
