package badger

import (
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// RunStorage implements the RunStorage interface for Badger
type RunStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRunStorage creates a new RunStorage instance
func NewRunStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RunStorage {
	return &RunStorage{
		db:     db,
		logger: logger,
	}
}

// SaveRun persists a pipeline run result
func (s *RunStorage) SaveRun(run *models.RunResult) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if err := s.db.Store().Upsert(run.ID, run); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns a run result by ID
func (s *RunStorage) GetRun(id string) (*models.RunResult, error) {
	var run models.RunResult
	if err := s.db.Store().Get(id, &run); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns run results, most recent first, up to limit. A limit of
// zero or less returns all runs.
func (s *RunStorage) ListRuns(limit int) ([]*models.RunResult, error) {
	var runs []models.RunResult
	if err := s.db.Store().Find(&runs, nil); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	result := make([]*models.RunResult, len(runs))
	for i := range runs {
		result[i] = &runs[i]
	}
	return result, nil
}
