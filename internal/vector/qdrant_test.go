package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advenoh/ragchat/internal/models"
)

func TestQdrantStore_Upsert(t *testing.T) {
	var gotPath string
	var gotBody struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL})
	chunks := []models.Chunk{
		{Meta: models.PostMeta{BlogID: "blog-v2", Title: "T", URL: "https://x/y", Tags: []string{"go"}}, Content: "c1"},
		{Meta: models.PostMeta{BlogID: "blog-v2", Title: "T2"}, Content: "c2"},
	}
	vectors := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	if err := s.Upsert(context.Background(), "blog-v2", chunks, vectors); err != nil {
		t.Fatal(err)
	}

	if gotPath != "/collections/blog-v2/points" {
		t.Errorf("path: got %q", gotPath)
	}
	if len(gotBody.Points) != 2 {
		t.Fatalf("points: got %d", len(gotBody.Points))
	}
	p := gotBody.Points[0]
	if p.ID == "" {
		t.Error("point id should be set")
	}
	if p.Payload["content"] != "c1" || p.Payload["title"] != "T" {
		t.Errorf("payload: got %v", p.Payload)
	}
	if _, ok := p.Payload["tags"]; !ok {
		t.Error("non-empty tags should be in the payload")
	}
	if _, ok := gotBody.Points[1].Payload["tags"]; ok {
		t.Error("empty tags must be omitted from the payload")
	}
}

func TestQdrantStore_UpsertLengthMismatch(t *testing.T) {
	s := NewQdrantStore(QdrantConfig{URL: "http://unused"})
	err := s.Upsert(context.Background(), "b", []models.Chunk{{}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestQdrantStore_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/blog-v2/points/search" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.92,"payload":{"content":"chunk text","blog_id":"blog-v2","title":"Post","url":"https://b/p","tags":["go","enum"]}},
			{"score":0.81,"payload":{"content":"other","blog_id":"blog-v2","title":"Other","url":"https://b/o"}}
		]}`))
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL})
	hits, err := s.Query(context.Background(), "blog-v2", []float32{0.5}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits: got %d", len(hits))
	}
	if hits[0].Score != 0.92 || hits[0].Chunk.Content != "chunk text" {
		t.Errorf("hit 0: %+v", hits[0])
	}
	if hits[0].Chunk.Meta.Title != "Post" || len(hits[0].Chunk.Meta.Tags) != 2 {
		t.Errorf("hit 0 meta: %+v", hits[0].Chunk.Meta)
	}
	if hits[1].Chunk.Meta.Tags != nil {
		t.Errorf("hit 1 tags should be absent, got %v", hits[1].Chunk.Meta.Tags)
	}
}

func TestQdrantStore_DeleteCollectionToleratesMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL})
	if err := s.DeleteCollection(context.Background(), "gone"); err != nil {
		t.Errorf("missing collection should not error: %v", err)
	}
}

func TestQdrantStore_EnsureCollectionConflictOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	s := NewQdrantStore(QdrantConfig{URL: srv.URL})
	if err := s.EnsureCollection(context.Background(), "blog-v2", 1536); err != nil {
		t.Errorf("existing collection should not error: %v", err)
	}
}
