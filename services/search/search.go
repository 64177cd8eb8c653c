package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/meghashyamc/apotek/db"
	"github.com/meghashyamc/apotek/logger"
)

// RecordSource loads the full record set of a kind.
type RecordSource interface {
	List(ctx context.Context, kind db.Kind) ([]db.Record, error)
}

type Service struct {
	logger logger.Logger
	source RecordSource
	ranker *Ranker
}

type ListResult struct {
	Page
	Query string
	// CreateSuggestion is set when a non-empty query matched nothing, so the
	// caller can offer to create a record with that name.
	CreateSuggestion string
}

func New(logger logger.Logger, source RecordSource, ranker *Ranker) *Service {
	return &Service{
		logger: logger,
		source: source,
		ranker: ranker,
	}
}

// List runs filter, rank and paginate over the current records of kind.
func (s *Service) List(ctx context.Context, kind db.Kind, query string, page int, pageSize int) (*ListResult, error) {
	records, err := s.source.List(ctx, kind)
	if err != nil {
		s.logger.Error("failed to load records", "kind", kind, "err", err.Error())
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}

	query = strings.TrimSpace(query)
	matched := FilterRecords(records, query, kind)
	if query != "" {
		matched = s.ranker.RankRecords(matched, query)
	}

	result := &ListResult{
		Page:  Paginate(matched, page, pageSize),
		Query: query,
	}
	if query != "" && result.TotalItems == 0 {
		result.CreateSuggestion = query
	}

	s.logger.Debug("listed records", "kind", kind, "query", query, "page", page, "page_size", pageSize, "total", result.TotalItems)

	return result, nil
}
