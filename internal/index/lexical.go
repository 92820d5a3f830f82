// Package index maintains the approximate multi-field lexical index over the
// current bookmark collection. The index is rebuilt lazily when the
// collection fingerprint changes and replaced atomically, so concurrent
// readers always observe either the fully-old or fully-new index.
package index

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/marksearch/marksearch/internal/domain"
	"github.com/marksearch/marksearch/internal/metrics"
)

// DefaultThreshold is the per-token dissimilarity ceiling for a fuzzy match.
const DefaultThreshold = 0.4

// MinQueryLen is the minimum query length that produces lexical matches.
// Anything shorter is treated as not-a-query.
const MinQueryLen = 2

// Relative contribution of each field to the document score. The weights
// sum to 1, so a perfect match in a heavy field outranks a weak match
// spread across light ones.
var fieldWeights = []struct {
	name   string
	weight float64
}{
	{"title", 0.40},
	{"notes", 0.25},
	{"description", 0.15},
	{"tags", 0.15},
	{"ocrText", 0.05},
}

// indexedDoc holds one document with its lowercased field texts and tokens,
// in fieldWeights order.
type indexedDoc struct {
	doc    domain.Document
	texts  [5]string
	tokens [5][]token
}

// snapshot is one immutable build of the index.
type snapshot struct {
	fingerprint uint64
	docs        []indexedDoc
}

// Lexical is the process-wide lexical index.
type Lexical struct {
	threshold float64
	logger    *zap.Logger

	mu   sync.Mutex // serializes rebuilds
	snap atomic.Pointer[snapshot]
}

// New creates an empty lexical index. A non-positive threshold falls back
// to DefaultThreshold.
func New(threshold float64, logger *zap.Logger) *Lexical {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lexical{threshold: threshold, logger: logger}
}

// Ensure rebuilds the index if the collection fingerprint changed since the
// last build. Rebuilds replace the snapshot pointer wholesale; readers are
// never exposed to a partially built index.
func (l *Lexical) Ensure(docs []domain.Document) {
	fp := Fingerprint(docs)
	if cur := l.snap.Load(); cur != nil && cur.fingerprint == fp {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another request may have rebuilt while we waited for the lock.
	if cur := l.snap.Load(); cur != nil && cur.fingerprint == fp {
		return
	}

	snap, ok := l.build(fp, docs)
	if !ok {
		return
	}
	l.snap.Store(snap)
	metrics.IndexRebuildsTotal.Inc()
	metrics.IndexDocuments.Set(float64(len(docs)))
	l.logger.Debug("lexical index rebuilt", zap.Int("documents", len(docs)))
}

// build constructs a snapshot. A panic while indexing malformed documents
// must not take down the request path; the previous snapshot stays in place
// and the request degrades to zero lexical candidates.
func (l *Lexical) build(fp uint64, docs []domain.Document) (snap *snapshot, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("lexical index build failed", zap.Any("panic", r))
			snap, ok = nil, false
		}
	}()

	indexed := make([]indexedDoc, len(docs))
	for i, d := range docs {
		texts := [5]string{
			strings.ToLower(d.Title),
			strings.ToLower(d.Notes),
			strings.ToLower(d.Description),
			strings.ToLower(strings.Join(d.Tags, " ")),
			strings.ToLower(d.OCRText),
		}
		var tokens [5][]token
		for f, text := range texts {
			tokens[f] = tokenize(text)
		}
		indexed[i] = indexedDoc{doc: d, texts: texts, tokens: tokens}
	}

	return &snapshot{fingerprint: fp, docs: indexed}, true
}

// Search returns candidates whose dissimilarity against the query clears the
// match threshold in at least one field, ordered by ascending score. Queries
// shorter than MinQueryLen return no matches.
func (l *Lexical) Search(query string) []domain.Candidate {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinQueryLen {
		return nil
	}

	snap := l.snap.Load()
	if snap == nil {
		return nil
	}

	queryTokens := tokenize(q)
	var out []domain.Candidate

	for i := range snap.docs {
		d := &snap.docs[i]

		var score float64
		var fieldMatches []domain.FieldMatch
		anyField := false

		for f, fw := range fieldWeights {
			fs, positions, matched := fieldScore(queryTokens, d.texts[f], d.tokens[f], l.threshold)
			score += fw.weight * fs
			if matched {
				anyField = true
				fieldMatches = append(fieldMatches, domain.FieldMatch{Field: fw.name, Positions: positions})
			}
		}

		if anyField {
			out = append(out, domain.Candidate{Document: d.doc, Score: score, Matches: fieldMatches})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

// Size returns the number of documents in the current snapshot.
func (l *Lexical) Size() int {
	if snap := l.snap.Load(); snap != nil {
		return len(snap.docs)
	}
	return 0
}
