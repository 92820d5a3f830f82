package search

import (
	"context"

	"github.com/marksearch/marksearch/internal/domain"
	"github.com/marksearch/marksearch/internal/vectorizer"
)

// DocumentSource supplies the full current searchable collection on demand.
type DocumentSource interface {
	All(ctx context.Context) ([]domain.Document, error)
}

// Index is the lexical index consumed by the orchestrator.
type Index interface {
	Ensure(docs []domain.Document)
	Search(query string) []domain.Candidate
}

// Vectorizer produces a vector for a text and reports which arm produced it.
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float32, vectorizer.Method)
}

// SortKey selects the result ordering.
type SortKey string

// Supported sort keys.
const (
	SortRelevance SortKey = "relevance"
	SortDate      SortKey = "date"
	SortTitle     SortKey = "title"
)

// Request is a lexical/filtered search request.
type Request struct {
	Query   string
	Filters domain.Filter
	Page    int
	Limit   int
	SortBy  SortKey
}

// Response is a page of ranked candidates with derived suggestions.
type Response struct {
	Results     []domain.Candidate
	Total       int
	Page        int
	TotalPages  int
	Suggestions []string
	Query       string
	Filters     domain.Filter
}

// SemanticRequest is a semantic search request. Threshold is the similarity
// floor; candidates below it are discarded before ranking.
type SemanticRequest struct {
	Query     string
	Filters   domain.Filter
	Limit     int
	Threshold float64
}

// SemanticResult pairs a document with its cosine similarity. Score is
// 1 - similarity, kept for sort-compatibility with the lexical path.
type SemanticResult struct {
	Item       domain.Document
	Score      float64
	Similarity float64
}

// SemanticResponse is the semantic search result set. Method reports whether
// the external provider or the local fallback produced the vectors.
type SemanticResponse struct {
	Results []SemanticResult
	Total   int
	Query   string
	Method  vectorizer.Method
}

// Suggestion is one autocomplete hint.
type Suggestion struct {
	Type  string
	Value string
	Label string
}
