// Package vector provides per-blog-collection access to the vector database.
package vector

import (
	"context"

	"github.com/advenoh/ragchat/internal/models"
)

// ScoredChunk is a retrieved chunk with its similarity score.
type ScoredChunk struct {
	Chunk models.Chunk
	Score float32
}

// Store is a thin per-blog-collection wrapper over the vector database.
// One collection exists per configured blog identifier, named after it.
type Store interface {
	// EnsureCollection creates the blog's collection if it does not exist.
	EnsureCollection(ctx context.Context, blogID string, dimension int) error
	// Upsert writes chunks with their vectors into the blog's collection.
	Upsert(ctx context.Context, blogID string, chunks []models.Chunk, vectors [][]float32) error
	// Query returns the topK most similar chunks to the query vector.
	Query(ctx context.Context, blogID string, vector []float32, topK int) ([]ScoredChunk, error)
	// DeleteCollection drops the blog's collection. A missing collection is
	// not an error; deletion precedes every reindex.
	DeleteCollection(ctx context.Context, blogID string) error
}
