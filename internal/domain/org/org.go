// Package org models the organization aggregate: one persisted document per
// organization with its members and teams embedded. Teams and members have no
// standalone record in the store; child change events are merged into the
// parent aggregate in place.
package org

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fernhollow/searchsync/internal/domain"
	"github.com/fernhollow/searchsync/internal/domain/doctype"
)

// Member is an organization member embedded in the aggregate.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Team is a team embedded in the aggregate. Members holds member identifiers.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// Organization is the persisted aggregate. Members and Teams are always
// present after any merge, possibly empty, never absent.
type Organization struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	Members     []Member `json:"members"`
	Teams       []Team   `json:"teams"`
	DocType     string   `json:"docType"`
}

// NewShell creates an empty aggregate for an organization that has no stored
// document yet. The first child event referencing an unknown organization
// creates its aggregate implicitly.
func NewShell(id string) Organization {
	return Organization{
		ID:      id,
		Members: []Member{},
		Teams:   []Team{},
		DocType: string(doctype.Organization),
	}
}

// FromPayload builds a full aggregate from an organization-level payload.
func FromPayload(p map[string]any) (Organization, error) {
	id := stringField(p, "id", "orgId", "_id")
	if id == "" {
		return Organization{}, fmt.Errorf("organization payload: %w", domain.ErrMissingDocumentID)
	}

	o := NewShell(id)
	o.Name = stringField(p, "name")
	o.Slug = stringField(p, "slug")
	o.Description = stringField(p, "description")
	o.CreatedAt = stringField(p, "createdAt", "created_at")

	if raw, ok := p["members"].([]any); ok {
		for _, m := range raw {
			if mp, ok := m.(map[string]any); ok {
				o.Members = append(o.Members, MemberFromPayload(mp))
			}
		}
	}
	if raw, ok := p["teams"].([]any); ok {
		for _, t := range raw {
			if tp, ok := t.(map[string]any); ok {
				o.Teams = append(o.Teams, TeamFromPayload(tp))
			}
		}
	}
	return o, nil
}

// ParentID resolves the parent organization identifier of a child payload.
func ParentID(p map[string]any) string {
	return stringField(p, "orgId", "organizationId", "org_id")
}

// MemberFromPayload builds a member record, generating a fallback identifier
// when the payload carries none.
func MemberFromPayload(p map[string]any) Member {
	id := stringField(p, "id", "memberId", "_id")
	if id == "" {
		id = uuid.NewString()
	}
	return Member{
		ID:    id,
		Name:  stringField(p, "name"),
		Email: stringField(p, "email"),
		Role:  stringField(p, "role"),
	}
}

// TeamFromPayload builds a team record, generating a fallback identifier when
// the payload carries none. Member entries may be plain identifiers or nested
// objects with an id field.
func TeamFromPayload(p map[string]any) Team {
	id := stringField(p, "id", "teamId", "_id")
	if id == "" {
		id = uuid.NewString()
	}
	t := Team{
		ID:      id,
		Name:    stringField(p, "name"),
		Members: []string{},
	}
	if raw, ok := p["members"].([]any); ok {
		for _, m := range raw {
			switch v := m.(type) {
			case string:
				t.Members = append(t.Members, v)
			case map[string]any:
				if mid := stringField(v, "id", "memberId", "_id"); mid != "" {
					t.Members = append(t.Members, mid)
				}
			}
		}
	}
	return t
}

// MergeMember upserts a member into the aggregate by identifier. An existing
// entry is replaced in place with a shallow merge that keeps fields the
// incoming record leaves empty; a new entry is appended. All sibling members,
// teams, and aggregate fields are untouched.
func (o *Organization) MergeMember(m Member) {
	o.ensureCollections()
	for i, existing := range o.Members {
		if existing.ID == m.ID {
			o.Members[i] = mergeMember(existing, m)
			return
		}
	}
	o.Members = append(o.Members, m)
}

// MergeTeam upserts a team into the aggregate by identifier, with the same
// replace-or-append and shallow-merge rules as MergeMember.
func (o *Organization) MergeTeam(t Team) {
	o.ensureCollections()
	for i, existing := range o.Teams {
		if existing.ID == t.ID {
			o.Teams[i] = mergeTeam(existing, t)
			return
		}
	}
	o.Teams = append(o.Teams, t)
}

// ensureCollections restores the invariant that both collections exist after
// any merge, even on aggregates decoded from documents that predate it.
func (o *Organization) ensureCollections() {
	if o.Members == nil {
		o.Members = []Member{}
	}
	if o.Teams == nil {
		o.Teams = []Team{}
	}
}

func mergeMember(existing, incoming Member) Member {
	out := existing
	if incoming.Name != "" {
		out.Name = incoming.Name
	}
	if incoming.Email != "" {
		out.Email = incoming.Email
	}
	if incoming.Role != "" {
		out.Role = incoming.Role
	}
	return out
}

func mergeTeam(existing, incoming Team) Team {
	out := existing
	if incoming.Name != "" {
		out.Name = incoming.Name
	}
	if len(incoming.Members) > 0 {
		out.Members = incoming.Members
	}
	return out
}

func stringField(p map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := p[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
