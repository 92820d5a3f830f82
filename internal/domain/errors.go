package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed or out-of-range request parameter.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyQuery signals a semantic search without a query.
	ErrEmptyQuery = errors.New("query is required")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStoreUnavailable signals that the document store could not be reached.
	ErrStoreUnavailable = errors.New("document store unavailable")
)
