package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
	"github.com/custodia-labs/planroom/internal/logger"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// EvaluationService replays fixed questions through the query pipeline
// and grades the answers. Cases run one at a time; a failing case is
// recorded and the run continues.
type EvaluationService struct {
	query driving.QueryService
	index driven.IndexStore
	cases []domain.EvaluationCase
}

// EvaluationOption configures an EvaluationService.
type EvaluationOption func(*EvaluationService)

// WithEvaluationCases replaces the default cases.
func WithEvaluationCases(cases []domain.EvaluationCase) EvaluationOption {
	return func(s *EvaluationService) {
		if len(cases) > 0 {
			s.cases = cases
		}
	}
}

// NewEvaluationService creates an evaluation service. index may be nil,
// in which case the report omits the chunk count.
func NewEvaluationService(query driving.QueryService, index driven.IndexStore, opts ...EvaluationOption) *EvaluationService {
	s := &EvaluationService{
		query: query,
		index: index,
		cases: domain.DefaultEvaluationCases(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate runs every case and summarises the grades. Only cancellation
// of ctx aborts the run.
func (s *EvaluationService) Evaluate(ctx context.Context) (*domain.EvaluationReport, error) {
	logger.Section("Evaluate")

	report := &domain.EvaluationReport{
		TotalQueries: len(s.cases),
		Results:      make([]domain.EvaluationResult, 0, len(s.cases)),
	}
	if s.index != nil {
		n, err := s.index.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count chunks: %w", err)
		}
		report.IndexedChunks = n
	}

	for i := range s.cases {
		c := &s.cases[i]
		answer, err := s.query.Query(ctx, driving.QueryRequest{Text: c.Query})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		var result domain.EvaluationResult
		if err != nil {
			logger.Warn("Evaluation query %q failed: %v", c.Query, err)
			result = c.Failed(err)
		} else {
			result = c.Grade(answer.Answer, len(answer.Sources))
		}
		logger.Debug("%s: %s (%.2f)", c.Category, result.Correctness, result.KeywordScore)
		report.Summary.Add(&result)
		report.Results = append(report.Results, result)
	}

	logger.Info("Evaluated %d queries: %d correct", report.TotalQueries, report.Summary.Correct)
	return report, nil
}
