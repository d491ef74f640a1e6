package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder produces deterministic pseudo-embeddings from a text hash.
// Used in tests and local runs without a provider key.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a mock embedder with the given dimensionality.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a unit-norm vector derived from the text's hash.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, m.dimensions)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		v := float64(int64(seed)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

// EmbedBatch embeds each text independently.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}
