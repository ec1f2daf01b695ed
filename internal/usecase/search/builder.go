package search

import (
	"github.com/fernhollow/searchsync/internal/domain/mapping"
	"github.com/fernhollow/searchsync/internal/domain/search/request"
)

// textFields is the weighted full-text field list. Title outranks description,
// which outranks the remaining task and organization fields.
var textFields = []string{
	"title^3",
	"description^2",
	"category",
	"assignee",
	"invites",
	"name^2",
	"slug",
	"members.name",
	"members.email",
	"teams.name",
}

// Builder assembles store query bodies. The visibility filter adapts per
// field to what the mapping summary reports: exact term on the keyword
// sub-field when one exists, fuzzy match otherwise. Assuming the sub-field
// exists when it does not would silently return zero results.
type Builder struct {
	tasksIndex string
	orgsIndex  string
}

// NewBuilder creates a query builder bound to the two searchable indices.
func NewBuilder(tasksIndex, orgsIndex string) *Builder {
	return &Builder{tasksIndex: tasksIndex, orgsIndex: orgsIndex}
}

// Indices returns the indices every search runs against.
func (b *Builder) Indices() []string {
	return []string{b.tasksIndex, b.orgsIndex}
}

// Build produces the visibility-scoped query body. A hit must satisfy the
// text clause and at least one visibility branch: tasks the caller owns, or
// organizations the caller is a member of.
func (b *Builder) Build(req request.Request, summary mapping.Summary) map[string]any {
	return map[string]any{
		"size": req.Limit(),
		"query": map[string]any{
			"bool": map[string]any{
				"must":   []any{b.textClause(req.Query())},
				"filter": []any{b.visibilityClause(req.UserEmail(), summary)},
			},
		},
	}
}

// BuildUnfiltered produces the same query without the visibility filter.
// Used by debug mode to tell "no textual match" apart from "filtered out".
func (b *Builder) BuildUnfiltered(req request.Request) map[string]any {
	return map[string]any{
		"size": req.Limit(),
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{b.textClause(req.Query())},
			},
		},
	}
}

// textClause matches the query text across the weighted field list in
// bool_prefix mode so a partial last token still matches.
func (b *Builder) textClause(query string) map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query":  query,
			"type":   "bool_prefix",
			"fields": textFields,
		},
	}
}

func (b *Builder) visibilityClause(email string, summary mapping.Summary) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"should": []any{
				identityClause(summary, b.tasksIndex, "userEmail", email),
				identityClause(summary, b.orgsIndex, "members.email", email),
			},
			"minimum_should_match": 1,
		},
	}
}

func identityClause(summary mapping.Summary, index, field, email string) map[string]any {
	if summary.HasExact(index, field) {
		return map[string]any{
			"term": map[string]any{field + ".keyword": email},
		}
	}
	return map[string]any{
		"match": map[string]any{field: email},
	}
}
