package query

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/models"
)

// Service ties interpretation and filtering into a single query operation
type Service struct {
	interpreter *Interpreter
	logger      arbor.ILogger
}

// NewService creates a query service. llm may be nil; interpretation then
// runs rule-based only.
func NewService(llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		interpreter: NewInterpreter(llm, logger),
		logger:      logger,
	}
}

// Interpret exposes interpretation without filtering
func (s *Service) Interpret(ctx context.Context, queryText string) *models.SearchSpec {
	return s.interpreter.Interpret(ctx, queryText)
}

// ProcessQuery interprets the query and filters the document set with the
// resulting spec. It never fails outward: an interpretation anomaly degrades
// to the wildcard spec, and a filtering anomaly yields an empty result.
func (s *Service) ProcessQuery(ctx context.Context, queryText string, docs models.DocumentSet) (*models.SearchSpec, []models.MatchedDocument) {
	spec := s.interpreter.Interpret(ctx, queryText)
	results := FilterDocuments(docs, spec, s.logger)

	s.logger.Info().
		Str("query", queryText).
		Str("document_type", string(spec.DocumentType)).
		Str("date_kind", string(spec.DateFilter.Kind)).
		Int("results", len(results)).
		Msg("Query processed")

	return spec, results
}
