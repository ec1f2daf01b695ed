// Package db defines the index store facade. The store is treated as an
// opaque document store with get/index/delete/search/refresh/get-mapping
// operations and eventually-consistent read-after-write bridged by an
// explicit refresh.
package db

import (
	"context"
	"time"
)

// Store is the main store facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	DocumentStore
	Searcher
	SchemaReader
	Refresher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentStore provides per-document operations keyed by (index, id).
type DocumentStore interface {
	GetSource(ctx context.Context, index, id string) (map[string]any, error)
	Index(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
}

// Searcher executes a structured query against one or more indices.
type Searcher interface {
	Search(ctx context.Context, indices []string, body map[string]any) (*SearchResult, error)
}

// SchemaReader reads the store's field mappings.
type SchemaReader interface {
	GetMapping(ctx context.Context, indices []string) (map[string]any, error)
}

// Refresher makes recent writes visible to search without waiting for the
// store's default refresh interval.
type Refresher interface {
	Refresh(ctx context.Context, indices []string) error
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total int
	Hits  []SearchHit
}

// SearchHit is a single document hit from a search.
type SearchHit struct {
	ID     string
	Index  string
	Score  float64
	Source map[string]any
}
