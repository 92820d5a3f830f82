package index

import (
	"strings"
	"unicode"
)

// token is one lowercase word of a field with its byte offset in the
// original (lowercased) text.
type token struct {
	text  string
	start int
}

// tokenize lowercases text and splits it on non-letter, non-digit runs.
func tokenize(text string) []token {
	lower := strings.ToLower(text)
	var out []token
	start := -1
	for i, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, token{text: lower[start:i], start: start})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, token{text: lower[start:], start: start})
	}
	return out
}

// fieldScore computes the dissimilarity of a query against one field.
//
// Each query token contributes its best match in the field: an exact
// substring occurrence counts as 0 regardless of where in the field it
// occurs, otherwise the smallest length-normalized edit distance to any
// field token counts, saturating at 1 when it exceeds the threshold. The
// field score is the mean contribution over all query tokens, so a field
// that matches nothing scores 1.
//
// Returned positions are byte offsets of exact occurrences, for highlighting.
// matched is true when at least one token landed under the threshold.
func fieldScore(queryTokens []token, fieldText string, fieldTokens []token, threshold float64) (score float64, positions []int, matched bool) {
	if len(queryTokens) == 0 || fieldText == "" {
		return 1, nil, false
	}

	var total float64
	for _, q := range queryTokens {
		best := 1.0
		if idx := strings.Index(fieldText, q.text); idx >= 0 {
			best = 0
			positions = append(positions, idx)
		} else {
			for _, ft := range fieldTokens {
				if d := normalizedDistance(q.text, ft.text); d < best {
					best = d
				}
			}
			if best > threshold {
				best = 1
			}
		}
		if best <= threshold {
			matched = true
		}
		total += best
	}

	return total / float64(len(queryTokens)), positions, matched
}

// normalizedDistance is the Levenshtein distance between two words divided
// by the length of the longer word, yielding a dissimilarity in [0,1].
func normalizedDistance(a, b string) float64 {
	if a == b {
		return 0
	}
	longer := max(len(a), len(b))
	if longer == 0 {
		return 0
	}
	return float64(levenshtein(a, b)) / float64(longer)
}

// levenshtein computes the edit distance with a two-row matrix.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
