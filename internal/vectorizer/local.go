package vectorizer

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDimensions matches the default provider embedding dimension so the
// two arms stay interchangeable.
const DefaultDimensions = 384

// minTokenLen drops short noise tokens before hashing.
const minTokenLen = 3

// Local is a deterministic offline vectorizer: token frequencies hashed into
// a fixed number of buckets, L2-normalized. Identical input always yields an
// identical vector, with no external calls.
type Local struct {
	dimensions int
}

// NewLocal creates a local vectorizer. A non-positive dimension falls back
// to DefaultDimensions.
func NewLocal(dimensions int) *Local {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Local{dimensions: dimensions}
}

// Dimensions returns the vector length produced by this vectorizer.
func (l *Local) Dimensions() int { return l.dimensions }

// Vectorize implements Vectorizer. It never fails.
func (l *Local) Vectorize(_ context.Context, text string) ([]float32, error) {
	tokens := splitWords(strings.ToLower(text))

	counts := make(map[string]int)
	total := 0
	for _, t := range tokens {
		if len(t) < minTokenLen {
			continue
		}
		counts[t]++
		total++
	}

	vec := make([]float32, l.dimensions)
	if total == 0 {
		return vec, nil
	}

	for tok, count := range counts {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		bucket := int(h.Sum32()) % l.dimensions
		if bucket < 0 {
			bucket += l.dimensions
		}
		vec[bucket] += float32(count) / float32(total)
	}

	return normalize(vec), nil
}

// splitWords splits on runs of non-letter, non-digit characters.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales the vector to unit length. A zero vector is returned
// unmodified; there is nothing to divide by.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	mag := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= mag
	}
	return v
}
