package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/fernhollow/searchsync/internal/db"
)

// stubTransport answers every request with a canned response and records the
// last request for assertions.
type stubTransport struct {
	status   int
	body     string
	lastReq  *http.Request
	lastBody []byte
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastReq = req
	if req.Body != nil {
		t.lastBody, _ = io.ReadAll(req.Body)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	// The v8 client verifies this header on the first response.
	header.Set("X-Elastic-Product", "Elasticsearch")
	return &http.Response{
		StatusCode: t.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Request:    req,
	}, nil
}

func newTestStore(t *testing.T, transport *stubTransport) *Store {
	t.Helper()
	s, err := NewStore(Config{
		Addrs:     []string{"http://localhost:9200"},
		Transport: transport,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestGetSource_Success(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: `{"id":"t1","title":"Design review","docType":"task"}`}
	s := newTestStore(t, tr)

	source, err := s.GetSource(context.Background(), "tasks", "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source["title"] != "Design review" {
		t.Errorf("unexpected source: %v", source)
	}
	if got := tr.lastReq.URL.Path; got != "/tasks/_source/t1" {
		t.Errorf("unexpected path %q", got)
	}
}

func TestGetSource_NotFound(t *testing.T) {
	tr := &stubTransport{status: http.StatusNotFound, body: `{"found":false}`}
	s := newTestStore(t, tr)

	_, err := s.GetSource(context.Background(), "tasks", "missing")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIndex_SendsDocumentByID(t *testing.T) {
	tr := &stubTransport{status: http.StatusCreated, body: `{"result":"created"}`}
	s := newTestStore(t, tr)

	doc := map[string]any{"id": "t1", "title": "Design review"}
	if err := s.Index(context.Background(), "tasks", "t1", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.lastReq.URL.Path; got != "/tasks/_doc/t1" {
		t.Errorf("unexpected path %q", got)
	}

	var decoded map[string]any
	if err := json.Unmarshal(tr.lastBody, &decoded); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if decoded["title"] != "Design review" {
		t.Errorf("unexpected body: %v", decoded)
	}
}

func TestDelete_NotFound(t *testing.T) {
	tr := &stubTransport{status: http.StatusNotFound, body: `{"result":"not_found"}`}
	s := newTestStore(t, tr)

	err := s.Delete(context.Background(), "tasks", "missing")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSearch_DecodesHits(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_id": "t1", "_index": "tasks", "_score": 1.7, "_source": {"title": "Design review"}},
				{"_id": "o1", "_index": "organizations", "_score": 0.4, "_source": {"name": "Acme"}}
			]
		}
	}`}
	s := newTestStore(t, tr)

	res, err := s.Search(context.Background(), []string{"tasks", "organizations"}, map[string]any{
		"query": map[string]any{"match_all": map[string]any{}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Hits) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Hits[0].ID != "t1" || res.Hits[0].Index != "tasks" || res.Hits[0].Score != 1.7 {
		t.Errorf("unexpected first hit: %+v", res.Hits[0])
	}
	if res.Hits[1].Source["name"] != "Acme" {
		t.Errorf("unexpected second hit source: %v", res.Hits[1].Source)
	}
}

func TestSearch_NullScore(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: `{
		"hits": {"total": {"value": 1}, "hits": [{"_id": "t1", "_index": "tasks", "_score": null, "_source": {}}]}
	}`}
	s := newTestStore(t, tr)

	res, err := s.Search(context.Background(), []string{"tasks"}, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Hits[0].Score != 0 {
		t.Errorf("null score must decode to 0, got %f", res.Hits[0].Score)
	}
}

func TestGetMapping_ReturnsRaw(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: `{
		"tasks": {"mappings": {"properties": {"title": {"type": "text"}}}}
	}`}
	s := newTestStore(t, tr)

	raw, err := s.GetMapping(context.Background(), []string{"tasks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["tasks"]; !ok {
		t.Errorf("expected raw mapping keyed by index, got %v", raw)
	}
}

func TestServerError_WrapsOp(t *testing.T) {
	tr := &stubTransport{status: http.StatusInternalServerError, body: `{"error":"boom"}`}
	s := newTestStore(t, tr)

	err := s.Index(context.Background(), "tasks", "t1", map[string]any{})
	if err == nil {
		t.Fatal("expected error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected *db.Error, got %T", err)
	}
	if dbErr.Op != db.OpIndex {
		t.Errorf("expected op %q, got %q", db.OpIndex, dbErr.Op)
	}
}

func TestWaitForReady_Immediate(t *testing.T) {
	tr := &stubTransport{status: http.StatusOK, body: `{}`}
	s := newTestStore(t, tr)

	if err := s.WaitForReady(context.Background(), 0); err != nil {
		t.Fatalf("expected ready store to pass with zero timeout, got %v", err)
	}
}

func TestWaitForReady_ZeroTimeoutReportsPingError(t *testing.T) {
	tr := &stubTransport{status: http.StatusServiceUnavailable, body: `{}`}
	s := newTestStore(t, tr)

	err := s.WaitForReady(context.Background(), 0)
	if err == nil {
		t.Fatal("expected error from unreachable store")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected the ping error to be wrapped, got %v", err)
	}
	if dbErr.Op != db.OpPing {
		t.Errorf("expected op %q, got %q", db.OpPing, dbErr.Op)
	}
}
