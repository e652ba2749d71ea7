package categorizer

import (
	"context"
	"math"
)

// Embedder converts a merchant description into a dense vector for semantic
// similarity matching. Implementations may call external services, so Embed
// takes a context and may be slow on first use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either vector is empty, zero or of mismatched length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
