// Package search runs visibility-scoped full-text queries and shapes the
// store's hits into response items.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fernhollow/searchsync/internal/domain/search/request"
	"github.com/fernhollow/searchsync/internal/domain/search/result"
)

// Response is the shaped outcome of one search. Unfiltered is populated only
// in debug mode.
type Response struct {
	Results    []map[string]any `json:"results"`
	Unfiltered []map[string]any `json:"unfiltered,omitempty"`
}

// Service coordinates summary lookup, query building, and execution.
type Service struct {
	executor  Executor
	summaries SummaryProvider
	builder   *Builder
	logger    *zap.Logger
}

// New creates a search service.
func New(executor Executor, summaries SummaryProvider, builder *Builder, logger *zap.Logger) *Service {
	return &Service{
		executor:  executor,
		summaries: summaries,
		builder:   builder,
		logger:    logger,
	}
}

// Search runs the request against the store. A too-short query returns an
// empty result set without touching the store.
func (s *Service) Search(ctx context.Context, req request.Request) (Response, error) {
	if req.TooShort() {
		return Response{Results: []map[string]any{}}, nil
	}

	summary := s.summaries.Get(ctx)
	indices := s.builder.Indices()

	hits, err := s.executor.Search(ctx, indices, s.builder.Build(req, summary))
	if err != nil {
		return Response{}, fmt.Errorf("scoped search: %w", err)
	}
	resp := Response{Results: flatten(hits)}

	if req.Debug() {
		raw, err := s.executor.Search(ctx, indices, s.builder.BuildUnfiltered(req))
		if err != nil {
			return Response{}, fmt.Errorf("unfiltered search: %w", err)
		}
		resp.Unfiltered = flatten(raw)
	}

	return resp, nil
}

func flatten(hits []result.Hit) []map[string]any {
	items := make([]map[string]any, 0, len(hits))
	for _, h := range hits {
		items = append(items, h.Flatten())
	}
	return items
}
