package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/advenoh/ragchat/internal/models"
)

// HybridRetriever merges vector similarity hits with keyword hits from an
// in-memory index over the same chunks, semantic results first.
//
// This is the retrieval mode behind the use_hybrid_search config flag. The
// serving chain currently wires the vector retriever only; hybrid retrieval
// is an available extension point, not part of the live query path.
type HybridRetriever struct {
	vector Retriever
	index  bleve.Index
	chunks []models.Chunk
}

// NewHybridRetriever builds an in-memory keyword index over chunks and pairs
// it with the given vector retriever.
func NewHybridRetriever(vec Retriever, chunks []models.Chunk) (*HybridRetriever, error) {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize without stemming, so query terms
	// match the exact words that appear in posts.
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt("content", text)
	doc.AddFieldMappingsAt("title", text)
	im.DefaultMapping = doc

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	for i, chunk := range chunks {
		err := index.Index(strconv.Itoa(i), map[string]string{
			"content": chunk.Content,
			"title":   chunk.Meta.Title,
		})
		if err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index chunk %d: %w", i, err)
		}
	}
	return &HybridRetriever{vector: vec, index: index, chunks: chunks}, nil
}

// Retrieve returns semantic hits followed by keyword-only hits, deduplicated.
func (h *HybridRetriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	semantic, err := h.vector.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	keyword, err := h.keywordSearch(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	merged := make([]models.Chunk, 0, len(semantic)+len(keyword))
	for _, chunk := range append(semantic, keyword...) {
		key := chunk.Meta.Source + "\x00" + chunk.Content
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, chunk)
	}
	return merged, nil
}

func (h *HybridRetriever) keywordSearch(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = topK
	res, err := h.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	chunks := make([]models.Chunk, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(h.chunks) {
			continue
		}
		chunks = append(chunks, h.chunks[i])
	}
	return chunks, nil
}

// Close releases the in-memory keyword index.
func (h *HybridRetriever) Close() error {
	return h.index.Close()
}
