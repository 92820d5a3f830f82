package index

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []token
	}{
		{"empty", "", nil},
		{"single word", "react", []token{{"react", 0}}},
		{"lowercases", "React", []token{{"react", 0}}},
		{"splits on punctuation", "react-hooks, guide", []token{
			{"react", 0}, {"hooks", 6}, {"guide", 13},
		}},
		{"keeps digits", "es2015 syntax", []token{{"es2015", 0}, {"syntax", 7}}},
		{"only separators", "-- !!", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("tokenize(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"react", "", 5},
		{"", "rust", 4},
		{"react", "react", 0},
		{"react", "reactt", 1},
		{"react", "rect", 1},
		{"react", "rust", 4},
		{"kitten", "sitting", 3},
	}

	for _, tc := range tests {
		if got := levenshtein(tc.a, tc.b); got != tc.expected {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.expected)
		}
	}
}

func TestNormalizedDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected float64
	}{
		{"react", "react", 0},
		{"react", "reactt", 1.0 / 6.0},
		{"ab", "cd", 1},
		{"", "", 0},
	}

	for _, tc := range tests {
		if got := normalizedDistance(tc.a, tc.b); got != tc.expected {
			t.Errorf("normalizedDistance(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.expected)
		}
	}
}

func TestFieldScore_ExactSubstring(t *testing.T) {
	query := tokenize("react")
	text := "advanced react patterns"

	score, positions, matched := fieldScore(query, text, tokenize(text), DefaultThreshold)

	if score != 0 {
		t.Errorf("expected score 0 for exact substring, got %v", score)
	}
	if !matched {
		t.Error("expected matched=true")
	}
	if len(positions) != 1 || positions[0] != 9 {
		t.Errorf("expected position [9], got %v", positions)
	}
}

func TestFieldScore_FuzzyWithinThreshold(t *testing.T) {
	// One edit away from "react": distance 1/6 clears the 0.4 threshold.
	query := tokenize("reactt")
	text := "react hooks"

	score, positions, matched := fieldScore(query, text, tokenize(text), DefaultThreshold)

	if !matched {
		t.Fatal("expected fuzzy match within threshold")
	}
	if score <= 0 || score > DefaultThreshold {
		t.Errorf("expected score in (0, %v], got %v", DefaultThreshold, score)
	}
	if len(positions) != 0 {
		t.Errorf("fuzzy matches carry no highlight positions, got %v", positions)
	}
}

func TestFieldScore_BeyondThresholdSaturates(t *testing.T) {
	query := tokenize("kubernetes")
	text := "react hooks"

	score, _, matched := fieldScore(query, text, tokenize(text), DefaultThreshold)

	if matched {
		t.Error("did not expect a match beyond the threshold")
	}
	if score != 1 {
		t.Errorf("expected saturated score 1, got %v", score)
	}
}

func TestFieldScore_EmptyField(t *testing.T) {
	score, positions, matched := fieldScore(tokenize("react"), "", nil, DefaultThreshold)

	if score != 1 || matched || positions != nil {
		t.Errorf("empty field should score 1 with no match, got score=%v matched=%v positions=%v",
			score, matched, positions)
	}
}

func TestFieldScore_MeanOverQueryTokens(t *testing.T) {
	// "react" is an exact hit (0), "kubernetes" misses (1): mean is 0.5.
	query := tokenize("react kubernetes")
	text := "react hooks guide"

	score, _, matched := fieldScore(query, text, tokenize(text), DefaultThreshold)

	if !matched {
		t.Fatal("expected match from the exact token")
	}
	if score != 0.5 {
		t.Errorf("expected mean score 0.5, got %v", score)
	}
}
