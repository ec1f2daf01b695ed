// Package search executes built queries against the store and shapes hits
// into domain results.
package search

import (
	"context"
	"fmt"

	"github.com/fernhollow/searchsync/internal/db"
	"github.com/fernhollow/searchsync/internal/domain"
	"github.com/fernhollow/searchsync/internal/domain/search/result"
)

// store is the consumer interface for query execution (ISP).
type store interface {
	Search(ctx context.Context, indices []string, body map[string]any) (*db.SearchResult, error)
}

// Repo implements the search usecase's Executor contract.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs a structured query and shapes the ranked hits.
func (r *Repo) Search(ctx context.Context, indices []string, body map[string]any) ([]result.Hit, error) {
	res, err := r.store.Search(ctx, indices, body)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w: %w", domain.ErrStoreUnavailable, err)
	}

	hits := make([]result.Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, result.Hit{
			ID:     h.ID,
			Index:  h.Index,
			Score:  h.Score,
			Fields: h.Source,
		})
	}
	return hits, nil
}
