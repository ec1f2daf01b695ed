package search

import (
	"context"
	"errors"
	"testing"

	"github.com/fernhollow/searchsync/internal/db"
	"github.com/fernhollow/searchsync/internal/domain"
)

type mockStore struct {
	result *db.SearchResult
	err    error

	indices []string
	body    map[string]any
}

func (m *mockStore) Search(_ context.Context, indices []string, body map[string]any) (*db.SearchResult, error) {
	m.indices, m.body = indices, body
	return m.result, m.err
}

func TestSearch_ShapesHits(t *testing.T) {
	s := &mockStore{result: &db.SearchResult{
		Total: 1,
		Hits: []db.SearchHit{
			{ID: "t1", Index: "tasks", Score: 2.5, Source: map[string]any{"title": "Design review"}},
		},
	}}
	repo := New(s)

	hits, err := repo.Search(context.Background(), []string{"tasks"}, map[string]any{"size": 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	h := hits[0]
	if h.ID != "t1" || h.Index != "tasks" || h.Score != 2.5 {
		t.Errorf("unexpected hit: %+v", h)
	}
	if h.Fields["title"] != "Design review" {
		t.Errorf("unexpected fields: %v", h.Fields)
	}
	if len(s.indices) != 1 || s.indices[0] != "tasks" {
		t.Errorf("unexpected indices passed to store: %v", s.indices)
	}
}

func TestSearch_StoreError(t *testing.T) {
	bang := errors.New("timeout")
	repo := New(&mockStore{err: bang})

	_, err := repo.Search(context.Background(), []string{"tasks"}, map[string]any{})
	if !errors.Is(err, bang) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	repo := New(&mockStore{result: &db.SearchResult{}})

	hits, err := repo.Search(context.Background(), []string{"tasks"}, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("expected empty non-nil hit slice, got %v", hits)
	}
}
