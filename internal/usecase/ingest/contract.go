package ingest

import (
	"context"

	"github.com/fernhollow/searchsync/internal/domain/org"
	"github.com/fernhollow/searchsync/internal/domain/task"
)

// Repository defines the storage contract for document reconciliation.
type Repository interface {
	IndexTask(ctx context.Context, index string, doc task.Document) error
	IndexOrganization(ctx context.Context, index string, o org.Organization) error
	GetOrganization(ctx context.Context, index, id string) (org.Organization, error)
	Delete(ctx context.Context, index, id string) error
	Refresh(ctx context.Context, indices []string) error
}
