package domain

// FieldMatch records where a query matched inside one document field,
// for highlighting in the UI.
type FieldMatch struct {
	Field     string
	Positions []int
}

// Candidate pairs a document with a provisional relevance score.
//
// The score scale depends on how the candidate was generated: lexical
// candidates carry a dissimilarity in [0,1] where lower is better, semantic
// candidates carry a cosine similarity in [0,1] where higher is better.
// The two scales are not comparable and are never mixed in one response.
type Candidate struct {
	Document Document
	Score    float64
	Matches  []FieldMatch
}
