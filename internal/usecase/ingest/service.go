// Package ingest reconciles inbound change events against the index store:
// it classifies payloads, decides between upsert, merge-into-parent, and
// delete, and keeps the denormalized organization aggregate intact.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fernhollow/searchsync/internal/domain"
	"github.com/fernhollow/searchsync/internal/domain/doctype"
	"github.com/fernhollow/searchsync/internal/domain/event"
	"github.com/fernhollow/searchsync/internal/domain/org"
	"github.com/fernhollow/searchsync/internal/domain/task"
)

// Action is the reconciliation outcome kind.
type Action string

const (
	// ActionUpserted means the document was written as a full replace.
	ActionUpserted Action = "upserted"
	// ActionDeleted means the document was removed (or was already absent).
	ActionDeleted Action = "deleted"
	// ActionMerged means a child entity was merged into its parent aggregate.
	ActionMerged Action = "merged_into_organization"
)

// Outcome describes what a reconciliation did.
type Outcome struct {
	Action Action
	ID     string
	Index  string
}

// Service applies create/update/delete semantics per document kind.
type Service struct {
	repo       Repository
	tasksIndex string
	orgsIndex  string
	logger     *zap.Logger
}

// New creates an ingest service.
func New(repo Repository, tasksIndex, orgsIndex string, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		tasksIndex: tasksIndex,
		orgsIndex:  orgsIndex,
		logger:     logger,
	}
}

// Apply reconciles a single change event. Validation failures (no usable
// document, missing parent reference) surface as domain errors; store write
// failures are wrapped unmodified. Writes are idempotent: replaying an event
// yields the same stored state.
func (s *Service) Apply(ctx context.Context, evt event.Event) (Outcome, error) {
	if len(evt.Payload) == 0 {
		return Outcome{}, fmt.Errorf("apply event: %w", domain.ErrInvalidPayload)
	}

	kind := doctype.Classify(evt.Hint, evt.Payload)

	if evt.Kind == event.Delete {
		return s.delete(ctx, kind, evt.Payload)
	}

	switch kind {
	case doctype.Task:
		return s.upsertTask(ctx, evt.Payload)
	case doctype.Organization:
		return s.upsertOrganization(ctx, evt.Payload)
	default:
		return s.mergeChild(ctx, kind, evt.Payload)
	}
}

// delete removes the document from every index its kind could live in.
// Deletion failures are swallowed: deleting an absent document is not an
// error to the caller.
func (s *Service) delete(ctx context.Context, kind doctype.Type, p map[string]any) (Outcome, error) {
	id := documentID(p)
	if id == "" {
		return Outcome{}, fmt.Errorf("delete event: %w", domain.ErrMissingDocumentID)
	}

	indices := s.candidateIndices(kind)
	for _, index := range indices {
		if err := s.repo.Delete(ctx, index, id); err != nil {
			if !errors.Is(err, domain.ErrDocumentNotFound) {
				s.logger.Warn("best-effort delete failed",
					zap.String("index", index), zap.String("id", id), zap.Error(err))
			}
		}
	}
	s.refresh(ctx, indices)

	return Outcome{Action: ActionDeleted, ID: id, Index: indices[0]}, nil
}

func (s *Service) upsertTask(ctx context.Context, p map[string]any) (Outcome, error) {
	doc, err := task.FromPayload(p)
	if err != nil {
		return Outcome{}, err
	}

	if err := s.repo.IndexTask(ctx, s.tasksIndex, doc); err != nil {
		return Outcome{}, fmt.Errorf("upsert task %s: %w", doc.ID, err)
	}
	s.refresh(ctx, []string{s.tasksIndex})

	return Outcome{Action: ActionUpserted, ID: doc.ID, Index: s.tasksIndex}, nil
}

func (s *Service) upsertOrganization(ctx context.Context, p map[string]any) (Outcome, error) {
	o, err := org.FromPayload(p)
	if err != nil {
		return Outcome{}, err
	}

	if err := s.repo.IndexOrganization(ctx, s.orgsIndex, o); err != nil {
		return Outcome{}, fmt.Errorf("upsert organization %s: %w", o.ID, err)
	}
	s.refresh(ctx, []string{s.orgsIndex})

	return Outcome{Action: ActionUpserted, ID: o.ID, Index: s.orgsIndex}, nil
}

// mergeChild folds a team or member payload into its parent aggregate. The
// fetch-mutate-write sequence is not atomic: two concurrent merges into the
// same organization can race and the second writer wins. Known limitation,
// kept to match the upstream delivery contract (the webhook source retries).
func (s *Service) mergeChild(ctx context.Context, kind doctype.Type, p map[string]any) (Outcome, error) {
	parentID := org.ParentID(p)
	if parentID == "" {
		return Outcome{}, fmt.Errorf("%s payload: %w", kind, domain.ErrMissingParentOrg)
	}

	aggregate, err := s.repo.GetOrganization(ctx, s.orgsIndex, parentID)
	if err != nil {
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return Outcome{}, fmt.Errorf("fetch parent organization %s: %w", parentID, err)
		}
		aggregate = org.NewShell(parentID)
	}

	switch kind {
	case doctype.OrgMember:
		aggregate.MergeMember(org.MemberFromPayload(p))
	case doctype.Team:
		aggregate.MergeTeam(org.TeamFromPayload(p))
	}
	aggregate.DocType = string(doctype.Organization)

	if err := s.repo.IndexOrganization(ctx, s.orgsIndex, aggregate); err != nil {
		return Outcome{}, fmt.Errorf("write merged organization %s: %w", parentID, err)
	}
	s.refresh(ctx, []string{s.orgsIndex})

	return Outcome{Action: ActionMerged, ID: parentID, Index: s.orgsIndex}, nil
}

// refresh asks the store to make the write searchable immediately. Failures
// are swallowed; the store's own refresh interval catches up eventually.
func (s *Service) refresh(ctx context.Context, indices []string) {
	if err := s.repo.Refresh(ctx, indices); err != nil {
		s.logger.Warn("post-write refresh failed", zap.Strings("indices", indices), zap.Error(err))
	}
}

func (s *Service) candidateIndices(kind doctype.Type) []string {
	if kind == doctype.Task {
		return []string{s.tasksIndex}
	}
	return []string{s.orgsIndex}
}

func documentID(p map[string]any) string {
	for _, k := range []string{"id", "taskId", "orgId", "_id"} {
		if s, ok := p[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
