// Package embedding provides text embedding via a hosted provider.
package embedding

import "context"

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
