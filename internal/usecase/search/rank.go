package search

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/marksearch/marksearch/internal/domain"
)

// rank orders candidates by the requested key. Relevance preserves the order
// candidate generation produced (ascending dissimilarity for lexical,
// descending similarity for semantic); date and title sorts are stable so
// equal keys keep their original order.
func rank(cands []domain.Candidate, key SortKey) []domain.Candidate {
	switch key {
	case SortDate:
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].Document.CreatedAt.After(cands[j].Document.CreatedAt)
		})
	case SortTitle:
		c := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(cands, func(i, j int) bool {
			return c.CompareString(cands[i].Document.Title, cands[j].Document.Title) < 0
		})
	}
	return cands
}

// rankSemantic orders semantic results by descending similarity, stably.
func rankSemantic(results []SemanticResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
}

// paginate slices one 1-based page out of the ranked list. Pages past the
// end are empty, never an error.
func paginate(cands []domain.Candidate, page, limit int) (results []domain.Candidate, total, totalPages int) {
	total = len(cands)
	totalPages = (total + limit - 1) / limit

	start := (page - 1) * limit
	if start >= total {
		return []domain.Candidate{}, total, totalPages
	}
	end := min(start+limit, total)
	return cands[start:end], total, totalPages
}
