// Package mapping holds the process-wide mapping summary cache. The cache is
// an injected dependency with an explicit refresh lifecycle, lazily populated
// on first use and tolerant of staleness: an outdated summary only degrades
// match precision, never the correctness of writes.
package mapping

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	dommap "github.com/fernhollow/searchsync/internal/domain/mapping"
)

// CandidateFields returns the fixed set of fields whose exact-match
// capability the query builder adapts to: the owner-email-like and
// name/title-like fields of each index, including the nested members path.
func CandidateFields(tasksIndex, orgsIndex string) map[string][]string {
	return map[string][]string{
		tasksIndex: {"userEmail", "title"},
		orgsIndex:  {"members.email", "name"},
	}
}

// Cache caches the mapping summary across requests.
type Cache struct {
	source SchemaSource
	fields map[string][]string
	logger *zap.Logger

	mu      sync.RWMutex
	summary dommap.Summary
	loaded  bool
}

// New creates an unpopulated cache.
func New(source SchemaSource, fields map[string][]string, logger *zap.Logger) *Cache {
	return &Cache{
		source: source,
		fields: fields,
		logger: logger,
	}
}

// Get returns the last successfully loaded snapshot, triggering a synchronous
// refresh when none exists yet. A failed first refresh yields the empty
// summary: callers fall back to fuzzy matching instead of failing outright.
func (c *Cache) Get(ctx context.Context) dommap.Summary {
	c.mu.RLock()
	if c.loaded {
		s := c.summary
		c.mu.RUnlock()
		return s
	}
	c.mu.RUnlock()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("mapping refresh failed, falling back to empty summary", zap.Error(err))
		return dommap.Empty()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary
}

// Refresh reloads the summary from the store schema. On failure the previous
// snapshot, if any, is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	summary, err := c.source.Load(ctx, c.fields)
	if err != nil {
		return fmt.Errorf("refresh mapping summary: %w", err)
	}

	c.mu.Lock()
	c.summary = summary
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Raw returns the unprocessed schema for the given indices (all configured
// indices when none are named), for the diagnostics endpoint.
func (c *Cache) Raw(ctx context.Context, indices []string) (map[string]any, error) {
	if len(indices) == 0 {
		indices = c.Indices()
	}
	raw, err := c.source.Raw(ctx, indices)
	if err != nil {
		return nil, fmt.Errorf("raw schema: %w", err)
	}
	return raw, nil
}

// Indices lists the indices the cache tracks.
func (c *Cache) Indices() []string {
	indices := make([]string, 0, len(c.fields))
	for index := range c.fields {
		indices = append(indices, index)
	}
	return indices
}
