// Package doctype classifies inbound webhook payloads into the closed set of
// document kinds the index store persists.
package doctype

import "strings"

// Type is the kind of document a payload represents.
type Type string

const (
	// Task is a standalone task document.
	Task Type = "task"
	// Organization is the persisted organization aggregate.
	Organization Type = "organization"
	// Team is a team nested inside an organization aggregate.
	Team Type = "team"
	// OrgMember is a member nested inside an organization aggregate.
	OrgMember Type = "orgMember"
)

// IsChild reports whether documents of this type live only inside a parent
// organization aggregate.
func (t Type) IsChild() bool { return t == Team || t == OrgMember }

// rule is a single structural heuristic. Rules are evaluated in slice order
// and the first match wins; reordering them changes classification, so the
// order below is part of the contract. Member, organization, and team shapes
// are checked before the task shape because task-like fields (status) can
// co-occur with org-like payloads.
type rule struct {
	name  string
	typ   Type
	match func(p map[string]any) bool
}

var rules = []rule{
	{
		name: "member fields",
		typ:  OrgMember,
		match: func(p map[string]any) bool {
			return hasKey(p, "email") || hasKey(p, "role")
		},
	},
	{
		name: "organization shape",
		typ:  Organization,
		match: func(p map[string]any) bool {
			if hasKey(p, "slug") {
				return true
			}
			if teams, ok := p["teams"].([]any); ok && len(teams) > 0 {
				return true
			}
			if members, ok := p["members"].([]any); ok && len(members) > 0 {
				_, nested := members[0].(map[string]any)
				return nested
			}
			return false
		},
	},
	{
		name: "team shape",
		typ:  Team,
		match: func(p map[string]any) bool {
			if !hasKey(p, "name") {
				return false
			}
			members, ok := p["members"].([]any)
			if !ok {
				return false
			}
			for _, m := range members {
				if _, isStr := m.(string); !isStr {
					return false
				}
			}
			return true
		},
	},
	{
		name: "task fields",
		typ:  Task,
		match: func(p map[string]any) bool {
			return hasKey(p, "title") || hasKey(p, "userEmail") ||
				hasKey(p, "description") || hasKey(p, "status")
		},
	},
}

// Classify resolves the document type of a payload. An explicit hint (from a
// header or body field) takes priority over the structural heuristics; when
// neither resolves, the payload is treated as a task.
func Classify(hint string, payload map[string]any) Type {
	if t, ok := fromHint(hint); ok {
		return t
	}
	for _, r := range rules {
		if r.match(payload) {
			return r.typ
		}
	}
	return Task
}

// fromHint matches an explicit type hint, case-insensitively. "org"+"member"
// is checked before bare "org" so that hints like "org_member" do not resolve
// to the aggregate type.
func fromHint(hint string) (Type, bool) {
	h := strings.ToLower(strings.TrimSpace(hint))
	switch {
	case h == "":
		return "", false
	case strings.Contains(h, "task"):
		return Task, true
	case strings.Contains(h, "org") && strings.Contains(h, "member"):
		return OrgMember, true
	case strings.Contains(h, "org"):
		return Organization, true
	case strings.Contains(h, "team"):
		return Team, true
	}
	return "", false
}

func hasKey(p map[string]any, key string) bool {
	_, ok := p[key]
	return ok
}
