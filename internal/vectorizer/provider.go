package vectorizer

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/marksearch/marksearch/internal/domain"
	"github.com/marksearch/marksearch/internal/metrics"
)

// DefaultMaxInputChars bounds the text sent to the provider; anything beyond
// is truncated before the call.
const DefaultMaxInputChars = 8000

// DefaultCallTimeout bounds a single provider call. The slowest document
// determines semantic search latency, so the ceiling stays low and a timeout
// immediately hands the call to the local fallback.
const DefaultCallTimeout = 2 * time.Second

// Provider is an embedding provider using the OpenAI-compatible API.
type Provider struct {
	client        *openai.Client
	model         openai.EmbeddingModel
	dimensions    int
	maxInputChars int
	timeout       time.Duration
	name          string
	logger        *zap.Logger
}

// ProviderConfig holds the embedding provider settings.
type ProviderConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Dimensions    int
	MaxInputChars int
	Timeout       time.Duration
	Name          string
	Logger        *zap.Logger
}

// NewProvider creates an OpenAI-compatible embedding provider.
func NewProvider(cfg ProviderConfig) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultCallTimeout
	}
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Provider{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         openai.EmbeddingModel(cfg.Model),
		dimensions:    cfg.Dimensions,
		maxInputChars: cfg.MaxInputChars,
		timeout:       cfg.Timeout,
		name:          cfg.Name,
		logger:        cfg.Logger,
	}
}

// Vectorize implements Vectorizer via the provider API. Errors are wrapped
// with domain.ErrEmbeddingProviderError; the caller decides whether to fall
// back.
func (p *Provider) Vectorize(ctx context.Context, text string) ([]float32, error) {
	if len(text) > p.maxInputChars {
		text = text[:p.maxInputChars]
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	start := time.Now()
	resp, err := p.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.name, string(p.model), "error").Inc()
		return nil, fmt.Errorf("create embeddings: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(p.name, string(p.model), "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(p.name, string(p.model), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(p.name, string(p.model)).Observe(duration.Seconds())

	return resp.Data[0].Embedding, nil
}
