// Package vectorizer maps free text to fixed-dimension vectors so that
// semantic similarity can be computed as cosine similarity. The primary path
// calls an external embedding provider; a deterministic local vectorizer
// keeps the system functional when the provider is absent or failing.
package vectorizer

import (
	"context"
	"math"
)

// Method identifies which arm produced a vector.
type Method string

// Vectorization methods, surfaced in semantic search responses.
const (
	MethodProvider Method = "provider"
	MethodLocal    Method = "local"
)

// Vectorizer turns text into a fixed-length vector.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float32, error)
}

// Cosine computes the cosine similarity of two vectors. Mismatched lengths
// and zero vectors yield 0.
func Cosine(a, b []float32) float64 {
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
