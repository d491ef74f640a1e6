package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/advenoh/ragchat/internal/models"
)

// MemoryStore is an in-memory Store using cosine similarity. Used in tests
// and for local runs without a vector database.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]memoryPoint
}

type memoryPoint struct {
	chunk  models.Chunk
	vector []float32
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]memoryPoint)}
}

// EnsureCollection creates the collection if missing.
func (m *MemoryStore) EnsureCollection(_ context.Context, blogID string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[blogID]; !ok {
		m.collections[blogID] = nil
	}
	return nil
}

// Upsert appends chunks with their vectors to the blog's collection.
func (m *MemoryStore) Upsert(_ context.Context, blogID string, chunks []models.Chunk, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, chunk := range chunks {
		m.collections[blogID] = append(m.collections[blogID], memoryPoint{chunk: chunk, vector: vectors[i]})
	}
	return nil
}

// Query returns the topK most cosine-similar chunks.
func (m *MemoryStore) Query(_ context.Context, blogID string, vector []float32, topK int) ([]ScoredChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	points := m.collections[blogID]
	results := make([]ScoredChunk, 0, len(points))
	for _, p := range points {
		results = append(results, ScoredChunk{Chunk: p.chunk, Score: cosine(vector, p.vector)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteCollection drops the collection; missing collections are ignored.
func (m *MemoryStore) DeleteCollection(_ context.Context, blogID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, blogID)
	return nil
}

// Count returns the number of stored chunks for a blog. Test helper.
func (m *MemoryStore) Count(blogID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[blogID])
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
