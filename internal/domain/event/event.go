// Package event models inbound change events. The upstream webhook format
// identifies the operation with a free-form descriptor string ("task.created",
// "org-member-deleted", ...); it is decoded into a Kind exactly once at the
// transport boundary so the rest of the system never string-sniffs.
package event

import "strings"

// Kind is the operation an event requests.
type Kind string

const (
	// Upsert creates or replaces a document.
	Upsert Kind = "upsert"
	// Delete removes a document.
	Delete Kind = "delete"
)

// ParseKind decodes an event descriptor. Any descriptor mentioning a delete
// is a Delete; everything else, including an empty descriptor, is an Upsert.
func ParseKind(descriptor string) Kind {
	if strings.Contains(strings.ToLower(descriptor), "delete") {
		return Delete
	}
	return Upsert
}

// Event is a decoded change event ready for reconciliation.
type Event struct {
	Kind    Kind
	Hint    string // explicit document-type hint, may be empty
	Payload map[string]any
}
