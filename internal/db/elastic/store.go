// Package elastic implements the db.Store facade over Elasticsearch.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fernhollow/searchsync/internal/db"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	Addrs    []string
	Username string
	Password string

	// Transport overrides the HTTP transport; used by tests.
	Transport http.RoundTripper
}

// Store implements db.Store via the official Elasticsearch client.
type Store struct {
	client *elasticsearch.Client
}

var _ db.Store = (*Store)(nil)

// NewStore creates an Elasticsearch-backed store.
func NewStore(cfg Config) (*Store, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases store resources. The underlying HTTP client needs none.
func (s *Store) Close() {}

// Ping checks cluster reachability.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer drain(res)
	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: statusError(res)}
	}
	return nil
}

// WaitForReady polls the cluster until it responds or the timeout elapses.
// The cluster is always pinged at least once, so a zero timeout degrades to
// a single readiness probe.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("store not ready after %s: %w", timeout, lastErr)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// GetSource returns the stored fields of a document.
func (s *Store) GetSource(ctx context.Context, index, id string) (map[string]any, error) {
	res, err := s.client.GetSource(index, id, s.client.GetSource.WithContext(ctx))
	if err != nil {
		return nil, &db.Error{Op: db.OpGetSource, Err: err}
	}
	defer drain(res)

	if res.StatusCode == http.StatusNotFound {
		return nil, &db.Error{Op: db.OpGetSource, Err: db.ErrNotFound}
	}
	if res.IsError() {
		return nil, &db.Error{Op: db.OpGetSource, Err: statusError(res)}
	}

	var source map[string]any
	if err := json.NewDecoder(res.Body).Decode(&source); err != nil {
		return nil, &db.Error{Op: db.OpGetSource, Err: fmt.Errorf("decode source: %w", err)}
	}
	return source, nil
}

// Index writes a document as a full replace keyed by id.
func (s *Store) Index(ctx context.Context, index, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return &db.Error{Op: db.OpIndex, Err: fmt.Errorf("marshal document: %w", err)}
	}

	res, err := s.client.Index(index, bytes.NewReader(body),
		s.client.Index.WithDocumentID(id),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return &db.Error{Op: db.OpIndex, Err: statusError(res)}
	}
	return nil
}

// Delete removes a document. Deleting an absent document returns
// db.ErrNotFound; callers treat that as a no-op.
func (s *Store) Delete(ctx context.Context, index, id string) error {
	res, err := s.client.Delete(index, id, s.client.Delete.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	defer drain(res)

	if res.StatusCode == http.StatusNotFound {
		return &db.Error{Op: db.OpDelete, Err: db.ErrNotFound}
	}
	if res.IsError() {
		return &db.Error{Op: db.OpDelete, Err: statusError(res)}
	}
	return nil
}

// Refresh makes recent writes on the given indices visible to search.
func (s *Store) Refresh(ctx context.Context, indices []string) error {
	res, err := s.client.Indices.Refresh(
		s.client.Indices.Refresh.WithContext(ctx),
		s.client.Indices.Refresh.WithIndex(indices...),
	)
	if err != nil {
		return &db.Error{Op: db.OpRefresh, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return &db.Error{Op: db.OpRefresh, Err: statusError(res)}
	}
	return nil
}

// GetMapping returns the raw mapping description of the given indices.
func (s *Store) GetMapping(ctx context.Context, indices []string) (map[string]any, error) {
	res, err := s.client.Indices.GetMapping(
		s.client.Indices.GetMapping.WithContext(ctx),
		s.client.Indices.GetMapping.WithIndex(indices...),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpGetMapping, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return nil, &db.Error{Op: db.OpGetMapping, Err: statusError(res)}
	}

	var raw map[string]any
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, &db.Error{Op: db.OpGetMapping, Err: fmt.Errorf("decode mapping: %w", err)}
	}
	return raw, nil
}

// Search executes a structured query against the given indices.
func (s *Store) Search(ctx context.Context, indices []string, body map[string]any) (*db.SearchResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("marshal query: %w", err)}
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(indices...),
		s.client.Search.WithBody(bytes.NewReader(payload)),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer drain(res)

	if res.IsError() {
		return nil, &db.Error{Op: db.OpSearch, Err: statusError(res)}
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("decode response: %w", err)}
	}

	result := &db.SearchResult{
		Total: envelope.Hits.Total.Value,
		Hits:  make([]db.SearchHit, 0, len(envelope.Hits.Hits)),
	}
	for _, h := range envelope.Hits.Hits {
		var score float64
		if h.Score != nil {
			score = *h.Score
		}
		result.Hits = append(result.Hits, db.SearchHit{
			ID:     h.ID,
			Index:  h.Index,
			Score:  score,
			Source: h.Source,
		})
	}
	return result, nil
}

// searchEnvelope mirrors the slice of the search response we consume.
type searchEnvelope struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string         `json:"_id"`
			Index  string         `json:"_index"`
			Score  *float64       `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func statusError(res *esapi.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = res.Status()
	}
	return fmt.Errorf("unexpected status %d: %s", res.StatusCode, msg)
}

// drain consumes and closes the response body so the connection is reused.
func drain(res *esapi.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}
