package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/advenoh/ragchat/internal/models"
)

// QdrantStore is a minimal REST client to Qdrant using cosine distance.
// Collections are named after blog identifiers.
type QdrantStore struct {
	url    string
	apiKey string
	client *http.Client
}

// QdrantConfig contains connection details for a Qdrant server.
type QdrantConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// NewQdrantStore creates a Qdrant REST client.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &QdrantStore{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if missing. Qdrant returns 409 when
// the collection already exists; that is treated as success.
func (s *QdrantStore) EnsureCollection(ctx context.Context, blogID string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension: %d", dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	err := s.doJSON(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, blogID), body, nil)
	if err != nil && !isConflict(err) {
		return err
	}
	return nil
}

// Upsert writes chunks with their vectors into the blog's collection.
func (s *QdrantStore) Upsert(ctx context.Context, blogID string, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	points := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]any{
			"content":     chunk.Content,
			"blog_id":     chunk.Meta.BlogID,
			"title":       chunk.Meta.Title,
			"date":        chunk.Meta.Date,
			"description": chunk.Meta.Description,
			"category":    chunk.Meta.Category,
			"source":      chunk.Meta.Source,
			"url":         chunk.Meta.URL,
		}
		// Empty tag lists are never written; the store disallows empty collections.
		if len(chunk.Meta.Tags) > 0 {
			payload["tags"] = chunk.Meta.Tags
		}
		points[i] = map[string]any{
			// Qdrant accepts only integer or UUID point ids.
			"id":      uuid.New().String(),
			"vector":  vectors[i],
			"payload": payload,
		}
	}
	body := map[string]any{"points": points}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, blogID)
	return s.doJSON(ctx, http.MethodPut, url, body, nil)
}

// Query returns the topK most similar chunks to the query vector.
func (s *QdrantStore) Query(ctx context.Context, blogID string, vector []float32, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float32        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, blogID)
	if err := s.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return nil, err
	}

	results := make([]ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, ScoredChunk{
			Chunk: chunkFromPayload(r.Payload),
			Score: r.Score,
		})
	}
	return results, nil
}

// DeleteCollection drops the collection; a missing collection is ignored.
func (s *QdrantStore) DeleteCollection(ctx context.Context, blogID string) error {
	err := s.doJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, blogID), nil, nil)
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

func chunkFromPayload(payload map[string]any) models.Chunk {
	chunk := models.Chunk{}
	str := func(key string) string {
		v, _ := payload[key].(string)
		return v
	}
	chunk.Content = str("content")
	chunk.Meta = models.PostMeta{
		BlogID:      str("blog_id"),
		Title:       str("title"),
		Date:        str("date"),
		Description: str("description"),
		Category:    str("category"),
		Source:      str("source"),
		URL:         str("url"),
	}
	if raw, ok := payload["tags"].([]any); ok {
		for _, t := range raw {
			if tag, ok := t.(string); ok {
				chunk.Meta.Tags = append(chunk.Meta.Tags, tag)
			}
		}
	}
	return chunk
}

type statusError struct {
	code   int
	status string
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant request to %s failed: %s", e.url, e.status)
}

func isConflict(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusConflict
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (s *QdrantStore) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, status: resp.Status, url: url}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
