package search

import (
	"sort"
	"strings"

	"github.com/marksearch/marksearch/internal/domain"
)

// maxTagSuggestions caps post-search tag hints.
const maxTagSuggestions = 5

// maxAutocomplete caps pre-search query-box suggestions.
const maxAutocomplete = 10

// Fixed vocabularies matched by the query-box autocomplete.
var (
	typeVocabulary = []string{"note", "link", "tweet", "youtube"}
	dateVocabulary = []string{"today", "week", "month", "year"}
)

// tagSuggestions derives up to five "#tag" hints from the filtered result
// set, most frequent first, ties broken by first-seen order. Suggestions
// reflect what the user could actually narrow into, not the full collection.
func tagSuggestions(cands []domain.Candidate) []string {
	type tagCount struct {
		display string
		count   int
		seen    int
	}

	counts := make(map[string]*tagCount)
	var order []*tagCount
	for _, c := range cands {
		for _, tag := range c.Document.Tags {
			key := strings.ToLower(tag)
			tc, ok := counts[key]
			if !ok {
				tc = &tagCount{display: tag, seen: len(order)}
				counts[key] = tc
				order = append(order, tc)
			}
			tc.count++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].seen < order[j].seen
	})

	n := min(len(order), maxTagSuggestions)
	out := make([]string, 0, n)
	for _, tc := range order[:n] {
		out = append(out, "#"+tc.display)
	}
	return out
}

// autocomplete matches partial query-box input against known tags, the type
// vocabulary, and the date-preset vocabulary. Tags come first; the total is
// capped at ten.
func autocomplete(partial string, knownTags []string) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(partial))
	if q == "" {
		return nil
	}

	var out []Suggestion
	for _, tag := range knownTags {
		if strings.Contains(strings.ToLower(tag), q) {
			out = append(out, Suggestion{Type: "tag", Value: tag, Label: "#" + tag})
			if len(out) == maxAutocomplete {
				return out
			}
		}
	}
	for _, t := range typeVocabulary {
		if strings.Contains(t, q) {
			out = append(out, Suggestion{Type: "type", Value: t, Label: t})
			if len(out) == maxAutocomplete {
				return out
			}
		}
	}
	for _, d := range dateVocabulary {
		if strings.Contains(d, q) {
			out = append(out, Suggestion{Type: "date", Value: d, Label: d})
			if len(out) == maxAutocomplete {
				return out
			}
		}
	}
	return out
}

// distinctTags collects the collection's distinct tags in first-seen order.
func distinctTags(docs []domain.Document) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range docs {
		for _, tag := range d.Tags {
			key := strings.ToLower(tag)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
