package interfaces

import (
	"github.com/ternarybob/vigilo/internal/models"
)

// DocumentStorage persists scraped documents grouped by section
type DocumentStorage interface {
	// SaveDocuments replaces the stored documents for a section
	SaveDocuments(section models.Section, docs []models.Document) error

	// GetDocuments returns the stored documents for one section
	GetDocuments(section models.Section) ([]models.Document, error)

	// GetAllDocuments returns every stored document grouped by section
	GetAllDocuments() (models.DocumentSet, error)

	// DeleteSection removes all documents for a section
	DeleteSection(section models.Section) error
}

// RunStorage persists pipeline run results
type RunStorage interface {
	SaveRun(run *models.RunResult) error
	GetRun(id string) (*models.RunResult, error)
	ListRuns(limit int) ([]*models.RunResult, error)
}

// StorageManager provides access to all storage backends
type StorageManager interface {
	DocumentStorage() DocumentStorage
	RunStorage() RunStorage
	Close() error
}
