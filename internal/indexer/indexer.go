// Package indexer orchestrates blog ingestion: load, chunk, embed, upsert.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/advenoh/ragchat/internal/embedding"
	"github.com/advenoh/ragchat/internal/ingest"
	"github.com/advenoh/ragchat/internal/models"
	"github.com/advenoh/ragchat/internal/vector"
)

// Indexer rebuilds one blog's vector collection from its content tree.
type Indexer struct {
	embedder embedding.Embedder
	store    vector.Store
	splitter *ingest.Splitter
	logger   *zap.Logger
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(embedder embedding.Embedder, store vector.Store, chunkSize, chunkOverlap int, logger *zap.Logger) *Indexer {
	return &Indexer{
		embedder: embedder,
		store:    store,
		splitter: ingest.NewSplitter(chunkSize, chunkOverlap),
		logger:   logger,
	}
}

// Reindex drops the blog's collection and rebuilds it from contentsDir.
// Returns the number of indexed chunks.
func (idx *Indexer) Reindex(ctx context.Context, blogID, contentsDir string) (int, error) {
	if err := idx.store.DeleteCollection(ctx, blogID); err != nil {
		return 0, fmt.Errorf("failed to delete collection: %w", err)
	}

	posts, err := ingest.LoadBlogDocuments(contentsDir, blogID, idx.logger)
	if err != nil {
		return 0, err
	}
	chunks := idx.splitter.SplitDocuments(posts)
	idx.logger.Info("loaded blog contents",
		zap.String("blog_id", blogID),
		zap.Int("posts", len(posts)),
		zap.Int("chunks", len(chunks)),
	)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := idx.embed(ctx, chunks)
	if err != nil {
		return 0, err
	}
	if err := idx.store.EnsureCollection(ctx, blogID, len(vectors[0])); err != nil {
		return 0, err
	}
	if err := idx.store.Upsert(ctx, blogID, chunks, vectors); err != nil {
		return 0, fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return len(chunks), nil
}

func (idx *Indexer) embed(ctx context.Context, chunks []models.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	return vectors, nil
}
