package textutil

import (
	"math"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"room-entry-1-en.mp3", "room-entry-1-en.mp3", 0},
		{"đa", "da", 1},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	if got := Similarity("same", "same"); got != 1 {
		t.Fatalf("identical similarity = %v, want 1", got)
	}
	if got := Similarity("", ""); got != 1 {
		t.Fatalf("empty similarity = %v, want 1", got)
	}
	if got := Similarity("abcd", "wxyz"); got != 0 {
		t.Fatalf("disjoint similarity = %v, want 0", got)
	}
	got := Similarity("kitten", "sitting")
	want := 1 - 3.0/7.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Similarity(kitten, sitting) = %v, want %v", got, want)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"anger-room-entry-1-en.mp3", "anger-room-entry-2-en.mp3"},
		{"calm", "calming"},
		{"", "x"},
	}
	for _, p := range pairs {
		if Similarity(p[0], p[1]) != Similarity(p[1], p[0]) {
			t.Fatalf("Similarity not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestBestMatchPrefersEarliestOnTie(t *testing.T) {
	best, ok := BestMatch("ab", []string{"ax", "xb", "zz"})
	if !ok {
		t.Fatal("expected a match")
	}
	if best.Index != 0 || best.Value != "ax" {
		t.Fatalf("BestMatch = %+v, want index 0", best)
	}
	if _, ok := BestMatch("ab", nil); ok {
		t.Fatal("expected no match for empty candidates")
	}
}
