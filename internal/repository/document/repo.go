// Package document persists task and organization documents to the index
// store, converting between domain types and stored JSON.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fernhollow/searchsync/internal/db"
	"github.com/fernhollow/searchsync/internal/domain"
	"github.com/fernhollow/searchsync/internal/domain/org"
	"github.com/fernhollow/searchsync/internal/domain/task"
)

// store is the consumer interface for document persistence (ISP).
type store interface {
	GetSource(ctx context.Context, index, id string) (map[string]any, error)
	Index(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
	Refresh(ctx context.Context, indices []string) error
}

// Repo implements the ingest usecase's Repository contract.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// IndexTask writes a task projection as a full replace keyed by its id.
func (r *Repo) IndexTask(ctx context.Context, index string, doc task.Document) error {
	if err := r.store.Index(ctx, index, doc.ID, doc); err != nil {
		return fmt.Errorf("index task %s: %w: %w", doc.ID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// IndexOrganization writes an organization aggregate as a full replace.
func (r *Repo) IndexOrganization(ctx context.Context, index string, o org.Organization) error {
	if err := r.store.Index(ctx, index, o.ID, o); err != nil {
		return fmt.Errorf("index organization %s: %w: %w", o.ID, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetOrganization fetches a stored aggregate by id.
func (r *Repo) GetOrganization(ctx context.Context, index, id string) (org.Organization, error) {
	source, err := r.store.GetSource(ctx, index, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return org.Organization{}, domain.ErrDocumentNotFound
		}
		return org.Organization{}, fmt.Errorf("get organization %s: %w: %w", id, domain.ErrStoreUnavailable, err)
	}

	// Round-trip through JSON to decode the dynamic source into the aggregate.
	raw, err := json.Marshal(source)
	if err != nil {
		return org.Organization{}, fmt.Errorf("marshal organization source %s: %w", id, err)
	}
	var o org.Organization
	if err := json.Unmarshal(raw, &o); err != nil {
		return org.Organization{}, fmt.Errorf("decode organization %s: %w", id, err)
	}
	if o.ID == "" {
		o.ID = id
	}
	return o, nil
}

// Delete removes a document. An absent document maps to ErrDocumentNotFound
// so callers can treat it as an idempotent no-op.
func (r *Repo) Delete(ctx context.Context, index, id string) error {
	if err := r.store.Delete(ctx, index, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return domain.ErrDocumentNotFound
		}
		return fmt.Errorf("delete %s/%s: %w: %w", index, id, domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Refresh makes recent writes visible to search.
func (r *Repo) Refresh(ctx context.Context, indices []string) error {
	if err := r.store.Refresh(ctx, indices); err != nil {
		return fmt.Errorf("refresh %v: %w: %w", indices, domain.ErrStoreUnavailable, err)
	}
	return nil
}
