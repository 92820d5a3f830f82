// Package search orchestrates hybrid search over the bookmark collection:
// candidate generation (lexical index or full embedding comparison), the
// filter pipeline, ranking, pagination, and autocomplete suggestions.
package search

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/marksearch/marksearch/internal/domain"
	"github.com/marksearch/marksearch/internal/index"
	"github.com/marksearch/marksearch/internal/metrics"
	"github.com/marksearch/marksearch/internal/vectorizer"
)

// Defaults applied to requests that omit the parameter.
const (
	DefaultPageSize  = 20
	DefaultMaxPage   = 100
	DefaultThreshold = 0.3
)

// Service handles lexical, semantic, and autocomplete requests. It is
// stateless across requests; the only process-wide state lives in the
// injected index and the vectorizer's cache.
type Service struct {
	source DocumentSource
	index  Index
	vec    Vectorizer
	pool   *ants.Pool
	logger *zap.Logger
	now    func() time.Time

	defaultPageSize int
	maxPageSize     int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to resolve date filters.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPagination overrides the default and maximum page size.
func WithPagination(defaultSize, maxSize int) Option {
	return func(s *Service) {
		if defaultSize > 0 {
			s.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			s.maxPageSize = maxSize
		}
	}
}

// New creates a search service with a worker pool for per-document
// vectorization. workers <= 0 sizes the pool by CPU count.
func New(source DocumentSource, idx Index, vec Vectorizer, workers int, logger *zap.Logger, opts ...Option) (*Service, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		source:          source,
		index:           idx,
		vec:             vec,
		pool:            pool,
		logger:          logger,
		now:             time.Now,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     DefaultMaxPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// Search runs a lexical/filtered search: candidates from the index when a
// query is given, the whole collection with neutral score otherwise, then
// filter, rank, paginate, and derive tag suggestions.
func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	if err := s.normalize(&req); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("lexical", "invalid").Inc()
		return Response{}, err
	}

	docs, err := s.source.All(ctx)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("lexical", "error").Inc()
		return Response{}, fmt.Errorf("load collection: %w", err)
	}
	s.index.Ensure(docs)

	candidates := s.generateLexical(docs, req.Query)
	filtered := applyFilter(candidates, req.Filters, s.now())
	ranked := rank(filtered, req.SortBy)
	results, total, totalPages := paginate(ranked, req.Page, req.Limit)

	metrics.SearchRequestsTotal.WithLabelValues("lexical", "ok").Inc()
	metrics.SearchDuration.WithLabelValues("lexical").Observe(time.Since(start).Seconds())

	return Response{
		Results:     results,
		Total:       total,
		Page:        req.Page,
		TotalPages:  totalPages,
		Suggestions: tagSuggestions(filtered),
		Query:       req.Query,
		Filters:     req.Filters,
	}, nil
}

// generateLexical produces candidates for the query. Queries shorter than
// the index minimum are not queries at all: every document comes back with
// neutral score 0, leaving ranking to other criteria.
func (s *Service) generateLexical(docs []domain.Document, query string) []domain.Candidate {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < index.MinQueryLen {
		cands := make([]domain.Candidate, len(docs))
		for i, d := range docs {
			cands[i] = domain.Candidate{Document: d, Score: 0}
		}
		return cands
	}
	return s.index.Search(q)
}

// Semantic runs an embedding similarity search. Every document is vectorized
// concurrently; the similarity threshold gates candidates before ranking,
// not after pagination.
func (s *Service) Semantic(ctx context.Context, req SemanticRequest) (SemanticResponse, error) {
	start := time.Now()

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		metrics.SearchRequestsTotal.WithLabelValues("semantic", "invalid").Inc()
		return SemanticResponse{}, domain.ErrEmptyQuery
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		metrics.SearchRequestsTotal.WithLabelValues("semantic", "invalid").Inc()
		return SemanticResponse{}, fmt.Errorf("%w: threshold must be in [0,1]", domain.ErrInvalidRequest)
	}
	if req.Limit <= 0 {
		req.Limit = s.defaultPageSize
	}
	if req.Limit > s.maxPageSize {
		req.Limit = s.maxPageSize
	}
	if err := req.Filters.Validate(); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("semantic", "invalid").Inc()
		return SemanticResponse{}, err
	}

	docs, err := s.source.All(ctx)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("semantic", "error").Inc()
		return SemanticResponse{}, fmt.Errorf("load collection: %w", err)
	}
	docs = filterDocs(docs, req.Filters, s.now())

	queryVec, method := s.vec.Vectorize(ctx, req.Query)
	sims := s.similarities(ctx, queryVec, docs)

	results := make([]SemanticResult, 0, len(docs))
	for i, d := range docs {
		if sims[i] < req.Threshold {
			continue
		}
		results = append(results, SemanticResult{
			Item:       d,
			Score:      1 - sims[i],
			Similarity: sims[i],
		})
	}

	rankSemantic(results)
	total := len(results)
	if len(results) > req.Limit {
		results = results[:req.Limit]
	}

	metrics.SearchRequestsTotal.WithLabelValues("semantic", "ok").Inc()
	metrics.SearchDuration.WithLabelValues("semantic").Observe(time.Since(start).Seconds())

	return SemanticResponse{
		Results: results,
		Total:   total,
		Query:   req.Query,
		Method:  method,
	}, nil
}

// similarities computes one cosine similarity per document on the worker
// pool. Documents have no data dependency on each other; the full set is
// joined before ranking. A document whose vector cannot be computed simply
// scores 0 and drops out at the threshold gate.
func (s *Service) similarities(ctx context.Context, queryVec []float32, docs []domain.Document) []float64 {
	sims := make([]float64, len(docs))
	var wg sync.WaitGroup

	for i := range docs {
		wg.Add(1)
		doc := docs[i]
		slot := i
		task := func() {
			defer wg.Done()
			vec, _ := s.vec.Vectorize(ctx, searchText(doc))
			sims[slot] = vectorizer.Cosine(queryVec, vec)
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool exhausted or released: degrade to inline computation.
			task()
		}
	}

	wg.Wait()
	return sims
}

// Autocomplete matches partial query-box input against the collection's
// tags and the fixed type and date vocabularies.
func (s *Service) Autocomplete(ctx context.Context, partial string) ([]Suggestion, error) {
	docs, err := s.source.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	return autocomplete(partial, distinctTags(docs)), nil
}

// normalize applies request defaults and validates the rest.
func (s *Service) normalize(req *Request) error {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = s.defaultPageSize
	}
	if req.Limit > s.maxPageSize {
		req.Limit = s.maxPageSize
	}
	switch req.SortBy {
	case "":
		req.SortBy = SortRelevance
	case SortRelevance, SortDate, SortTitle:
	default:
		return fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidRequest, req.SortBy)
	}
	return req.Filters.Validate()
}

// searchText is the text a document is embedded from.
func searchText(d domain.Document) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{d.Title, d.Notes, d.Description, strings.Join(d.Tags, " "), d.OCRText} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
