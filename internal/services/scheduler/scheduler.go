package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/ternarybob/vigilo/internal/services/pipeline"
)

// PipelineRunner executes one monitoring cycle. Satisfied by pipeline.Service.
type PipelineRunner interface {
	Run(ctx context.Context, opts pipeline.Options) (*models.RunResult, error)
}

// Status reports the scheduler's current state
type Status struct {
	Running   bool       `json:"running"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Service runs the monitoring pipeline on a cron schedule
type Service struct {
	pipeline PipelineRunner
	cron     *cron.Cron
	logger   arbor.ILogger

	mu           sync.Mutex
	entryID      cron.EntryID
	schedule     string
	running      bool
	isProcessing bool
	lastRun      *time.Time
	lastError    string
}

// NewService creates a scheduler wrapping the given pipeline
func NewService(runner PipelineRunner, logger arbor.ILogger) *Service {
	return &Service{
		pipeline: runner,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}
}

// Start begins periodic pipeline execution with the given cron expression
func (s *Service) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if cronExpr == "" {
		cronExpr = "0 0 */6 * * *" // Every 6 hours
	}

	entryID, err := s.cron.AddFunc(cronExpr, s.runScheduledCycle)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.schedule = cronExpr
	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("cron_expr", cronExpr).
		Msg("Scheduler started")

	return nil
}

// Stop halts the scheduler, waiting for an in-flight run to finish
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Scheduled run did not finish within shutdown timeout")
	}

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is active
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// GetStatus returns the scheduler's current state
func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:   s.running,
		Schedule:  s.schedule,
		LastRun:   s.lastRun,
		LastError: s.lastError,
	}

	if s.running {
		entry := s.cron.Entry(s.entryID)
		if !entry.Next.IsZero() {
			next := entry.Next
			status.NextRun = &next
		}
	}

	return status
}

// runScheduledCycle executes one pipeline run. Overlapping cycles are
// skipped rather than queued.
func (s *Service) runScheduledCycle() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled run")
		}
	}()

	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous scheduled run still in progress, skipping this cycle")
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	s.logger.Info().Msg("Starting scheduled monitoring cycle")

	started := time.Now()
	run, err := s.pipeline.Run(context.Background(), pipeline.Options{SendEmail: true})

	s.mu.Lock()
	now := time.Now()
	s.lastRun = &now
	if err != nil {
		s.lastError = err.Error()
	} else if run != nil && run.Error != "" {
		s.lastError = run.Error
	} else {
		s.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().
			Err(err).
			Dur("duration", time.Since(started)).
			Msg("Scheduled monitoring cycle failed")
		return
	}

	s.logger.Info().
		Int("documents", run.Documents.Count()).
		Dur("duration", time.Since(started)).
		Msg("Scheduled monitoring cycle completed")
}

// TriggerNow runs the pipeline immediately in the background
func (s *Service) TriggerNow() error {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		return fmt.Errorf("a run is already in progress")
	}
	s.mu.Unlock()

	s.logger.Info().Msg("Manual pipeline run triggered")
	go s.runScheduledCycle()
	return nil
}
