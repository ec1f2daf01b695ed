// Package mapping reads the store schema and condenses it into a
// mapping.Summary for the query builder.
package mapping

import (
	"context"
	"fmt"

	"github.com/fernhollow/searchsync/internal/domain"
	"github.com/fernhollow/searchsync/internal/domain/mapping"
)

// store is the consumer interface for schema reads (ISP).
type store interface {
	GetMapping(ctx context.Context, indices []string) (map[string]any, error)
}

// Repo implements the mapping cache's SchemaSource contract.
type Repo struct {
	store store
}

// New creates a mapping repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Load fetches the mappings of the given indices and summarizes, per index,
// whether each candidate field carries an exact keyword sub-field.
func (r *Repo) Load(ctx context.Context, fields map[string][]string) (mapping.Summary, error) {
	indices := make([]string, 0, len(fields))
	for index := range fields {
		indices = append(indices, index)
	}

	raw, err := r.store.GetMapping(ctx, indices)
	if err != nil {
		return nil, fmt.Errorf("load mappings: %w: %w", domain.ErrStoreUnavailable, err)
	}

	summary := mapping.Empty()
	for index, candidates := range fields {
		props := propertiesOf(raw, index)
		for _, field := range candidates {
			summary.Set(index, field, mapping.FieldHasKeyword(props, field))
		}
	}
	return summary, nil
}

// Raw returns the unprocessed mapping description, for diagnostics.
func (r *Repo) Raw(ctx context.Context, indices []string) (map[string]any, error) {
	raw, err := r.store.GetMapping(ctx, indices)
	if err != nil {
		return nil, fmt.Errorf("raw mappings: %w: %w", domain.ErrStoreUnavailable, err)
	}
	return raw, nil
}

// propertiesOf digs index -> mappings -> properties out of the raw schema.
// Any missing level yields an empty tree, which reports false for all fields.
func propertiesOf(raw map[string]any, index string) map[string]any {
	entry, ok := raw[index].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	mappings, ok := entry["mappings"].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	props, ok := mappings["properties"].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return props
}
