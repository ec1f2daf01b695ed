package mapping

import (
	"context"

	dommap "github.com/fernhollow/searchsync/internal/domain/mapping"
)

// SchemaSource loads mapping summaries from the store schema.
type SchemaSource interface {
	Load(ctx context.Context, fields map[string][]string) (dommap.Summary, error)
	Raw(ctx context.Context, indices []string) (map[string]any, error)
}
