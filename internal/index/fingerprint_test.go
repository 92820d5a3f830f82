package index

import (
	"testing"
	"time"

	"github.com/marksearch/marksearch/internal/domain"
)

func fpDocs() []domain.Document {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Document{
		{ID: "a", Title: "React Hooks", Tags: []string{"react"}, CreatedAt: created},
		{ID: "b", Title: "Rust Ownership", CreatedAt: created.Add(time.Hour)},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	if Fingerprint(fpDocs()) != Fingerprint(fpDocs()) {
		t.Error("expected identical collections to produce identical fingerprints")
	}
}

func TestFingerprint_ChangesOnMutation(t *testing.T) {
	base := Fingerprint(fpDocs())

	tests := []struct {
		name   string
		mutate func([]domain.Document) []domain.Document
	}{
		{"document added", func(d []domain.Document) []domain.Document {
			return append(d, domain.Document{ID: "c"})
		}},
		{"document removed", func(d []domain.Document) []domain.Document {
			return d[:1]
		}},
		{"id changed", func(d []domain.Document) []domain.Document {
			d[0].ID = "a2"
			return d
		}},
		{"title length changed", func(d []domain.Document) []domain.Document {
			d[0].Title = d[0].Title + "!"
			return d
		}},
		{"tag added", func(d []domain.Document) []domain.Document {
			d[1].Tags = append(d[1].Tags, "systems")
			return d
		}},
		{"creation time changed", func(d []domain.Document) []domain.Document {
			d[0].CreatedAt = d[0].CreatedAt.Add(time.Minute)
			return d
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if Fingerprint(tc.mutate(fpDocs())) == base {
				t.Error("expected fingerprint to change")
			}
		})
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if Fingerprint(nil) != Fingerprint([]domain.Document{}) {
		t.Error("expected nil and empty collections to fingerprint identically")
	}
}
