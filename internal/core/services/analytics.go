package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/planroom/internal/core/domain"
	"github.com/custodia-labs/planroom/internal/core/ports/driven"
	"github.com/custodia-labs/planroom/internal/core/ports/driving"
)

// Ensure AnalyticsService implements the interface.
var _ driving.AnalyticsService = (*AnalyticsService)(nil)

const (
	recentQueries  = 50
	popularQueries = 10
)

// AnalyticsService summarises the query log.
type AnalyticsService struct {
	log driven.QueryLog
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(log driven.QueryLog) *AnalyticsService {
	return &AnalyticsService{log: log}
}

// Summary returns totals, the latest queries, the most asked queries and
// how often each document was cited.
func (s *AnalyticsService) Summary(ctx context.Context) (*domain.Analytics, error) {
	records, err := s.log.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("read query log: %w", err)
	}

	summary := &domain.Analytics{
		TotalQueries:  len(records),
		Recent:        append([]domain.QueryRecord{}, records[max(0, len(records)-recentQueries):]...),
		Popular:       []domain.QueryCount{},
		DocumentUsage: make(map[string]int),
	}

	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		if counts[rec.Query] == 0 {
			order = append(order, rec.Query)
		}
		counts[rec.Query]++
		for _, doc := range rec.Documents {
			summary.DocumentUsage[doc]++
		}
	}

	// Ties keep first-asked order.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	for _, q := range order[:min(len(order), popularQueries)] {
		summary.Popular = append(summary.Popular, domain.QueryCount{Query: q, Count: counts[q]})
	}
	return summary, nil
}
