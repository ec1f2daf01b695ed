// Package task models the flat task document projection persisted to the
// tasks index. Tasks are replaced wholesale on every update; there is no
// partial-field merge.
package task

import (
	"fmt"

	"github.com/fernhollow/searchsync/internal/domain"
	"github.com/fernhollow/searchsync/internal/domain/doctype"
)

// Document is the stored task projection. Every stored document carries the
// docType discriminator used by visibility filtering.
type Document struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	DueDate     string   `json:"dueDate,omitempty"`
	UserEmail   string   `json:"userEmail"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Invites     []string `json:"invites"`
	DocType     string   `json:"docType"`
}

// FromPayload projects a webhook payload onto the fixed task field set.
// The payload must carry an identifier.
func FromPayload(p map[string]any) (Document, error) {
	id := stringField(p, "id", "taskId", "_id")
	if id == "" {
		return Document{}, fmt.Errorf("task payload: %w", domain.ErrMissingDocumentID)
	}

	return Document{
		ID:          id,
		Title:       stringField(p, "title"),
		Description: stringField(p, "description"),
		Category:    stringField(p, "category"),
		Status:      stringField(p, "status"),
		Priority:    stringField(p, "priority"),
		DueDate:     stringField(p, "dueDate", "due_date"),
		UserEmail:   stringField(p, "userEmail", "ownerEmail"),
		CreatedAt:   stringField(p, "createdAt", "created_at"),
		UpdatedAt:   stringField(p, "updatedAt", "updated_at"),
		Assignee:    stringField(p, "assignee"),
		Invites:     stringSlice(p, "invites"),
		DocType:     string(doctype.Task),
	}, nil
}

func stringField(p map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := p[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringSlice(p map[string]any, key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
