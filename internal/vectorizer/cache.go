package vectorizer

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/marksearch/marksearch/internal/metrics"
)

// cacheKeyLen bounds the cache key to a prefix of the input text. Two long
// texts sharing the same 100-character prefix collide and share a vector;
// a known approximation carried over deliberately, traded for bounded keys
// and cheap lookups.
const cacheKeyLen = 100

// DefaultCacheEntries is the default eviction bound of the embedding cache.
const DefaultCacheEntries = 10_000

// entry memoizes a vector together with the arm that produced it.
type entry struct {
	vec    []float32
	method Method
}

// Cache memoizes vectors keyed by a bounded prefix of the source text.
// Unlike a plain map it is bounded: ristretto evicts under admission
// pressure, so cache growth does not track process lifetime.
type Cache struct {
	c *ristretto.Cache[string, entry]
}

// NewCache creates a bounded embedding cache.
func NewCache(maxEntries int64) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, entry]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &Cache{c: c}, nil
}

// Get returns a memoized vector for the text, if present.
func (c *Cache) Get(text string) ([]float32, Method, bool) {
	e, ok := c.c.Get(cacheKey(text))
	if !ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		return nil, "", false
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
	return e.vec, e.method, true
}

// Put memoizes a vector. Each entry costs 1 against the eviction bound.
func (c *Cache) Put(text string, vec []float32, method Method) {
	c.c.Set(cacheKey(text), entry{vec: vec, method: method}, 1)
}

// Wait flushes pending cache writes. Test helper; production code relies on
// eventual admission.
func (c *Cache) Wait() { c.c.Wait() }

// Close releases cache resources.
func (c *Cache) Close() { c.c.Close() }

// cacheKey is the first cacheKeyLen runes of the text.
func cacheKey(text string) string {
	runes := []rune(text)
	if len(runes) > cacheKeyLen {
		return string(runes[:cacheKeyLen])
	}
	return text
}
