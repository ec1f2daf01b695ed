package search

import (
	"context"

	"github.com/fernhollow/searchsync/internal/domain/mapping"
	"github.com/fernhollow/searchsync/internal/domain/search/result"
)

// Executor runs a structured query against the index store.
type Executor interface {
	Search(ctx context.Context, indices []string, body map[string]any) ([]result.Hit, error)
}

// SummaryProvider exposes the current exact-match capability snapshot.
type SummaryProvider interface {
	Get(ctx context.Context) mapping.Summary
}
