package index

import (
	"testing"
	"time"

	"github.com/marksearch/marksearch/internal/domain"
)

func lexDocs() []domain.Document {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Document{
		{ID: "title-hit", Title: "React Hooks Guide", CreatedAt: created},
		{ID: "notes-hit", Title: "Frontend reading", Notes: "covers react state management", CreatedAt: created},
		{ID: "ocr-hit", Title: "Screenshot", OCRText: "error in react render loop", CreatedAt: created},
		{ID: "rust", Title: "Rust Ownership", Notes: "borrow checker notes", CreatedAt: created},
		{ID: "unrelated", Title: "Sourdough starter", Notes: "feed twice daily", CreatedAt: created},
	}
}

func newTestIndex(t *testing.T, docs []domain.Document) *Lexical {
	t.Helper()
	idx := New(0, nil)
	idx.Ensure(docs)
	return idx
}

func TestLexical_SearchBeforeEnsure(t *testing.T) {
	idx := New(0, nil)
	if got := idx.Search("react"); got != nil {
		t.Errorf("expected nil candidates before first build, got %v", got)
	}
	if idx.Size() != 0 {
		t.Errorf("expected size 0, got %d", idx.Size())
	}
}

func TestLexical_ShortQuery(t *testing.T) {
	idx := newTestIndex(t, lexDocs())

	for _, q := range []string{"", " ", "r", " r "} {
		if got := idx.Search(q); got != nil {
			t.Errorf("expected no candidates for query %q, got %d", q, len(got))
		}
	}
}

func TestLexical_FieldWeightOrdering(t *testing.T) {
	idx := newTestIndex(t, lexDocs())

	got := idx.Search("react")
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}

	// A title match beats a notes match beats an ocr-only match.
	wantOrder := []string{"title-hit", "notes-hit", "ocr-hit"}
	for i, want := range wantOrder {
		if got[i].Document.ID != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].Document.ID, want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score < got[i-1].Score {
			t.Errorf("scores not ascending at position %d: %v < %v", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestLexical_NoMatchExcluded(t *testing.T) {
	idx := newTestIndex(t, lexDocs())

	for _, c := range idx.Search("react") {
		if c.Document.ID == "rust" || c.Document.ID == "unrelated" {
			t.Errorf("document %q should not be a candidate", c.Document.ID)
		}
	}
	if got := idx.Search("zzzzzz"); len(got) != 0 {
		t.Errorf("expected no candidates for nonsense query, got %d", len(got))
	}
}

func TestLexical_FuzzyMatch(t *testing.T) {
	idx := newTestIndex(t, lexDocs())

	got := idx.Search("reactt")
	if len(got) == 0 {
		t.Fatal("expected fuzzy candidates for a one-edit typo")
	}
	if got[0].Document.ID != "title-hit" {
		t.Errorf("expected title-hit first, got %q", got[0].Document.ID)
	}
}

func TestLexical_MatchPositions(t *testing.T) {
	idx := newTestIndex(t, lexDocs())

	got := idx.Search("react")
	if len(got) == 0 {
		t.Fatal("expected candidates")
	}

	first := got[0]
	if len(first.Matches) == 0 {
		t.Fatal("expected field matches on the top candidate")
	}
	if first.Matches[0].Field != "title" {
		t.Errorf("expected first match field 'title', got %q", first.Matches[0].Field)
	}
	if len(first.Matches[0].Positions) == 0 || first.Matches[0].Positions[0] != 0 {
		t.Errorf("expected highlight position [0], got %v", first.Matches[0].Positions)
	}
}

func TestLexical_RebuildOnChange(t *testing.T) {
	docs := lexDocs()
	idx := newTestIndex(t, docs)

	if idx.Size() != len(docs) {
		t.Fatalf("expected size %d, got %d", len(docs), idx.Size())
	}

	// Same collection: snapshot stays.
	before := idx.snap.Load()
	idx.Ensure(docs)
	if idx.snap.Load() != before {
		t.Error("expected snapshot to be reused for an unchanged collection")
	}

	// Changed collection: snapshot is replaced and new content is searchable.
	docs = append(docs, domain.Document{ID: "new", Title: "Zig comptime tricks"})
	idx.Ensure(docs)
	if idx.snap.Load() == before {
		t.Error("expected snapshot to be rebuilt after a collection change")
	}
	if idx.Size() != len(docs) {
		t.Errorf("expected size %d, got %d", len(docs), idx.Size())
	}

	got := idx.Search("comptime")
	if len(got) != 1 || got[0].Document.ID != "new" {
		t.Errorf("expected the added document to be searchable, got %v", got)
	}
}

func TestLexical_EmptyCollection(t *testing.T) {
	idx := newTestIndex(t, nil)

	if idx.Size() != 0 {
		t.Errorf("expected size 0, got %d", idx.Size())
	}
	if got := idx.Search("react"); len(got) != 0 {
		t.Errorf("expected no candidates on an empty collection, got %d", len(got))
	}
}

func TestLexical_CaseInsensitive(t *testing.T) {
	idx := newTestIndex(t, lexDocs())

	upper := idx.Search("REACT")
	lower := idx.Search("react")
	if len(upper) != len(lower) {
		t.Fatalf("expected case-insensitive search, got %d vs %d candidates", len(upper), len(lower))
	}
	for i := range upper {
		if upper[i].Document.ID != lower[i].Document.ID {
			t.Errorf("position %d: %q vs %q", i, upper[i].Document.ID, lower[i].Document.ID)
		}
	}
}
