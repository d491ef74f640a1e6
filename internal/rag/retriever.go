// Package rag orchestrates query rewriting, retrieval, and answer synthesis.
package rag

import (
	"context"
	"fmt"

	"github.com/advenoh/ragchat/internal/embedding"
	"github.com/advenoh/ragchat/internal/models"
	"github.com/advenoh/ragchat/internal/vector"
)

// Retriever returns the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.Chunk, error)
}

// VectorRetriever retrieves by embedding the query and running a similarity
// search against one blog's collection.
type VectorRetriever struct {
	embedder embedding.Embedder
	store    vector.Store
	blogID   string
}

// NewVectorRetriever creates a retriever over the given blog's collection.
func NewVectorRetriever(embedder embedding.Embedder, store vector.Store, blogID string) *VectorRetriever {
	return &VectorRetriever{embedder: embedder, store: store, blogID: blogID}
}

// Retrieve embeds query and returns the topK most similar chunks.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	hits, err := r.store.Query(ctx, r.blogID, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}
	chunks := make([]models.Chunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, hit.Chunk)
	}
	return chunks, nil
}
