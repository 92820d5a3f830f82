package search

import (
	"time"

	"github.com/marksearch/marksearch/internal/domain"
)

// applyFilter narrows candidates to those matching every active filter
// dimension. Pure and order-independent; an empty filter is the identity.
func applyFilter(cands []domain.Candidate, f domain.Filter, now time.Time) []domain.Candidate {
	if f.IsZero() {
		return cands
	}
	out := make([]domain.Candidate, 0, len(cands))
	for _, c := range cands {
		if f.Matches(c.Document, now) {
			out = append(out, c)
		}
	}
	return out
}

// filterDocs is applyFilter for bare documents, used on the semantic path
// before any vectorization work is spent.
func filterDocs(docs []domain.Document, f domain.Filter, now time.Time) []domain.Document {
	if f.IsZero() {
		return docs
	}
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if f.Matches(d, now) {
			out = append(out, d)
		}
	}
	return out
}
