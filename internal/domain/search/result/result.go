// Package result models shaped search hits.
package result

// Hit is a single search result: the stored document fields flattened
// alongside its identifier, source index, and relevance score.
type Hit struct {
	ID     string
	Index  string
	Score  float64
	Fields map[string]any
}

// Flatten merges the hit metadata into the stored fields for transport. The
// stored fields are copied, never mutated.
func (h Hit) Flatten() map[string]any {
	out := make(map[string]any, len(h.Fields)+3)
	for k, v := range h.Fields {
		out[k] = v
	}
	out["id"] = h.ID
	out["index"] = h.Index
	out["score"] = h.Score
	return out
}
