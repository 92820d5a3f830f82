package vectorizer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/marksearch/marksearch/internal/metrics"
)

// Fallback is the two-arm vectorization strategy: try the provider, degrade
// to the deterministic local vectorizer on error or timeout. Degradation is
// silent toward the caller; it is logged and counted, and the chosen arm is
// reported so responses can carry the method flag.
type Fallback struct {
	provider Vectorizer // nil when no provider is configured
	local    *Local
	cache    *Cache // nil disables memoization
	logger   *zap.Logger
}

// NewFallback creates the fallback adapter. provider and cache may be nil.
func NewFallback(provider Vectorizer, local *Local, cache *Cache, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{provider: provider, local: local, cache: cache, logger: logger}
}

// Vectorize returns a vector for the text and the arm that produced it.
// It never fails: the local arm is always available.
func (f *Fallback) Vectorize(ctx context.Context, text string) ([]float32, Method) {
	if f.cache != nil {
		if vec, method, ok := f.cache.Get(text); ok {
			return vec, method
		}
	}

	vec, method := f.compute(ctx, text)

	if f.cache != nil {
		f.cache.Put(text, vec, method)
	}
	return vec, method
}

func (f *Fallback) compute(ctx context.Context, text string) ([]float32, Method) {
	if f.provider == nil {
		metrics.EmbeddingFallbacksTotal.WithLabelValues("no_provider").Inc()
		return f.localVector(ctx, text), MethodLocal
	}

	vec, err := f.provider.Vectorize(ctx, text)
	if err == nil {
		return vec, MethodProvider
	}

	reason := "provider_error"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	}
	metrics.EmbeddingFallbacksTotal.WithLabelValues(reason).Inc()
	f.logger.Debug("embedding provider failed, using local vectorizer",
		zap.String("reason", reason),
		zap.Error(err),
	)

	return f.localVector(ctx, text), MethodLocal
}

func (f *Fallback) localVector(ctx context.Context, text string) []float32 {
	vec, _ := f.local.Vectorize(ctx, text)
	return vec
}
