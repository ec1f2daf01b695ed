// Package mapping describes which store fields support exact (keyword)
// matching. The summary is a best-effort cache of the store schema: a stale
// false only degrades match precision, never write correctness.
package mapping

import "strings"

// Summary maps index name -> field path -> whether the field resolves to a
// keyword type or carries a keyword sub-field.
type Summary map[string]map[string]bool

// Empty returns a summary reporting no exact sub-fields anywhere. Used as the
// safe fallback when the schema query fails.
func Empty() Summary { return Summary{} }

// HasExact reports whether the given field of the given index supports exact
// matching. Unknown indices and fields report false.
func (s Summary) HasExact(index, field string) bool {
	fields, ok := s[index]
	if !ok {
		return false
	}
	return fields[field]
}

// Set records the exact-match capability of an (index, field) pair.
func (s Summary) Set(index, field string, exact bool) {
	fields, ok := s[index]
	if !ok {
		fields = make(map[string]bool)
		s[index] = fields
	}
	fields[field] = exact
}

// FieldHasKeyword walks a mapping properties tree by dot-separated path
// segments, descending into nested object definitions, and reports whether
// the addressed field is keyword-typed or carries a keyword sub-field.
// A missing segment or missing field yields false, never an error.
func FieldHasKeyword(properties map[string]any, path string) bool {
	segments := strings.Split(path, ".")
	node := properties
	for i, seg := range segments {
		def, ok := node[seg].(map[string]any)
		if !ok {
			return false
		}
		if i == len(segments)-1 {
			return definitionHasKeyword(def)
		}
		node, ok = def["properties"].(map[string]any)
		if !ok {
			return false
		}
	}
	return false
}

func definitionHasKeyword(def map[string]any) bool {
	if t, ok := def["type"].(string); ok && t == "keyword" {
		return true
	}
	sub, ok := def["fields"].(map[string]any)
	if !ok {
		return false
	}
	for _, raw := range sub {
		if sd, ok := raw.(map[string]any); ok {
			if t, ok := sd["type"].(string); ok && t == "keyword" {
				return true
			}
		}
	}
	return false
}
