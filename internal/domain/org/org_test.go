package org

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fernhollow/searchsync/internal/domain"
)

func TestNewShell(t *testing.T) {
	o := NewShell("o1")
	if o.ID != "o1" {
		t.Errorf("expected id o1, got %q", o.ID)
	}
	if o.Members == nil || o.Teams == nil {
		t.Error("shell must have empty, non-nil member and team collections")
	}
	if o.DocType != "organization" {
		t.Errorf("expected docType=organization, got %q", o.DocType)
	}
}

func TestFromPayload_FullAggregate(t *testing.T) {
	p := map[string]any{
		"id":          "o1",
		"name":        "Acme",
		"slug":        "acme",
		"description": "widgets",
		"createdAt":   "2026-08-01T00:00:00Z",
		"members": []any{
			map[string]any{"id": "m1", "name": "Ann", "email": "ann@x.com", "role": "admin"},
		},
		"teams": []any{
			map[string]any{"id": "t1", "name": "Platform", "members": []any{"m1"}},
		},
	}

	o, err := FromPayload(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Name != "Acme" || o.Slug != "acme" {
		t.Errorf("unexpected aggregate: %+v", o)
	}
	if len(o.Members) != 1 || o.Members[0].Email != "ann@x.com" {
		t.Errorf("unexpected members: %+v", o.Members)
	}
	if len(o.Teams) != 1 || !reflect.DeepEqual(o.Teams[0].Members, []string{"m1"}) {
		t.Errorf("unexpected teams: %+v", o.Teams)
	}
}

func TestFromPayload_MissingID(t *testing.T) {
	_, err := FromPayload(map[string]any{"name": "Acme"})
	if !errors.Is(err, domain.ErrMissingDocumentID) {
		t.Errorf("expected ErrMissingDocumentID, got %v", err)
	}
}

func TestFromPayload_EmptyCollectionsNeverNil(t *testing.T) {
	o, err := FromPayload(map[string]any{"id": "o1", "name": "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Members == nil || o.Teams == nil {
		t.Error("members and teams must default to empty collections")
	}
}

func TestMemberFromPayload_FallbackID(t *testing.T) {
	m := MemberFromPayload(map[string]any{"email": "ann@x.com"})
	if m.ID == "" {
		t.Error("expected generated fallback id")
	}
	if m.Email != "ann@x.com" {
		t.Errorf("unexpected member: %+v", m)
	}
}

func TestTeamFromPayload_NestedMemberObjects(t *testing.T) {
	tm := TeamFromPayload(map[string]any{
		"id":      "t1",
		"name":    "Platform",
		"members": []any{"m1", map[string]any{"id": "m2"}},
	})
	if !reflect.DeepEqual(tm.Members, []string{"m1", "m2"}) {
		t.Errorf("unexpected team members: %v", tm.Members)
	}
}

func TestMergeMember_PreservesSiblings(t *testing.T) {
	o := NewShell("o1")
	o.Name = "Acme"
	o.Members = []Member{
		{ID: "a", Name: "Ann", Email: "ann@x.com", Role: "admin"},
		{ID: "b", Name: "Bob", Email: "bob@x.com", Role: "member"},
	}
	o.Teams = []Team{{ID: "t1", Name: "Platform", Members: []string{"a"}}}

	o.MergeMember(Member{ID: "c", Name: "Cleo", Email: "cleo@x.com"})

	if len(o.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(o.Members))
	}
	if o.Members[0].Name != "Ann" || o.Members[1].Name != "Bob" {
		t.Error("existing members must be untouched")
	}
	if len(o.Teams) != 1 || o.Teams[0].Name != "Platform" {
		t.Error("teams must be untouched by a member merge")
	}
	if o.Name != "Acme" {
		t.Error("aggregate fields must be untouched")
	}
}

func TestMergeMember_ReplaceInPlaceShallowMerge(t *testing.T) {
	o := NewShell("o1")
	o.Members = []Member{
		{ID: "a", Name: "Ann", Email: "ann@x.com", Role: "admin"},
		{ID: "b", Name: "Bob", Email: "bob@x.com", Role: "member"},
	}

	// Partial payload: only a role change for b. Name and email must survive.
	o.MergeMember(Member{ID: "b", Role: "admin"})

	if len(o.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(o.Members))
	}
	b := o.Members[1]
	if b.Role != "admin" {
		t.Errorf("expected updated role, got %q", b.Role)
	}
	if b.Name != "Bob" || b.Email != "bob@x.com" {
		t.Errorf("partial merge must preserve existing fields, got %+v", b)
	}
}

func TestMergeTeam_AppendAndReplace(t *testing.T) {
	o := NewShell("o1")

	o.MergeTeam(Team{ID: "t1", Name: "Platform", Members: []string{"a"}})
	if len(o.Teams) != 1 {
		t.Fatalf("expected 1 team, got %d", len(o.Teams))
	}

	o.MergeTeam(Team{ID: "t1", Members: []string{"a", "b"}})
	if len(o.Teams) != 1 {
		t.Fatalf("expected replace in place, got %d teams", len(o.Teams))
	}
	if o.Teams[0].Name != "Platform" {
		t.Error("team name must survive a partial update")
	}
	if !reflect.DeepEqual(o.Teams[0].Members, []string{"a", "b"}) {
		t.Errorf("unexpected team members: %v", o.Teams[0].Members)
	}
}

func TestMerge_RestoresCollectionsOnLegacyAggregates(t *testing.T) {
	// Aggregates decoded from old documents may carry nil collections.
	o := Organization{ID: "o1", DocType: "organization"}
	o.MergeMember(Member{ID: "a", Email: "ann@x.com"})

	if o.Members == nil || o.Teams == nil {
		t.Error("merge must leave both collections non-nil")
	}
	if len(o.Members) != 1 {
		t.Errorf("expected 1 member, got %d", len(o.Members))
	}
}

func TestParentID(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"orgId", map[string]any{"orgId": "o1"}, "o1"},
		{"organizationId", map[string]any{"organizationId": "o2"}, "o2"},
		{"snake case", map[string]any{"org_id": "o3"}, "o3"},
		{"absent", map[string]any{"id": "m1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParentID(tt.payload); got != tt.want {
				t.Errorf("ParentID = %q, want %q", got, tt.want)
			}
		})
	}
}
