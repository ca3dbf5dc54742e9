package matcher

import (
	"testing"

	"audiopilot/internal/room"
)

func slugs(values ...string) []room.Identity {
	entries := make([]room.Entry, 0, len(values))
	for _, v := range values {
		entries = append(entries, room.Entry{Slug: room.StrPtr(v)})
	}
	return room.Resolve(entries)
}

func TestMatchNumericIDScenario(t *testing.T) {
	ids := room.Resolve([]room.Entry{{ID: room.NumericID(0)}, {ID: room.NumericID(1)}, {ID: room.NumericID(2)}})
	m := New(DefaultPolicy(), nil)
	got := m.Match("anger-room-entry-2-en.mp3", "anger-room", ids)
	if got.MatchType != MatchIndex {
		t.Fatalf("matchType = %v, want index", got.MatchType)
	}
	if got.MatchedEntry == nil || got.MatchedEntry.Index != 2 {
		t.Fatalf("matched entry = %+v, want index 2", got.MatchedEntry)
	}
	if got.RequiresHumanReview {
		t.Fatal("numeric id match should not need review")
	}
}

func TestMatchNumericTokenNeverExact(t *testing.T) {
	m := New(DefaultPolicy(), nil)
	got := m.Match("room-2-en.mp3", "room", slugs("intro", "2"))
	if got.MatchType != MatchIndex {
		t.Fatalf("matchType = %v, want index", got.MatchType)
	}
	if got.MatchedEntry.Index != 1 {
		t.Fatalf("matched index = %d, want 1", got.MatchedEntry.Index)
	}

	positional := m.Match("room-2-en.mp3", "room", slugs("intro", "outro", "extra"))
	if positional.MatchType != MatchIndex || positional.MatchedEntry.Index != 2 {
		t.Fatalf("positional match = %+v", positional)
	}
	if positional.SuggestedCanonical != "room-extra-en.mp3" {
		t.Fatalf("suggested = %q", positional.SuggestedCanonical)
	}
}

func TestMatchExplicitIndexWins(t *testing.T) {
	ids := room.Resolve([]room.Entry{
		{Slug: room.StrPtr("1")},
		{Slug: room.StrPtr("intro"), Index: room.IntPtr(1)},
	})
	got := New(DefaultPolicy(), nil).Match("room-1-vi.mp3", "room", ids)
	if got.MatchedEntry == nil || got.MatchedEntry.Index != 1 {
		t.Fatalf("expected explicit index entry, got %+v", got.MatchedEntry)
	}
	if got.Confidence != 95 {
		t.Fatalf("confidence = %d, want 95", got.Confidence)
	}
}

func TestMatchOneBasedPositionNeedsReview(t *testing.T) {
	got := New(DefaultPolicy(), nil).Match("room-2-vi.mp3", "room", slugs("intro", "outro"))
	if got.MatchType != MatchIndex || got.MatchedEntry.Index != 1 {
		t.Fatalf("unexpected match %+v", got)
	}
	if !got.RequiresHumanReview {
		t.Fatal("one-based fallback should require review")
	}
}

func TestMatchStrategies(t *testing.T) {
	m := New(DefaultPolicy(), nil)
	tests := []struct {
		name   string
		file   string
		ids    []room.Identity
		want   MatchType
		conf   int
		review bool
	}{
		{"exact", "room-intro-en.mp3", slugs("intro", "outro"), MatchExact, 100, false},
		{"exact is case insensitive", "Room-Intro-EN.mp3", slugs("intro"), MatchExact, 100, false},
		{"slug", "room-breathing-exercise-en.mp3", slugs("intro", "breathing-exercises"), MatchSlug, 95, false},
		{"levenshtein", "room-intros-en.mp3", slugs("intro"), MatchLevenshtein, 94, false},
		{"low confidence guess", "room-zzzz-en.mp3", slugs("intro"), MatchLevenshtein, 71, true},
		{"no suffix", "room-intro.mp3", slugs("intro"), MatchNone, 0, true},
		{"no entries", "room-intro-en.mp3", nil, MatchNone, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.file, "room", tt.ids)
			if got.MatchType != tt.want {
				t.Fatalf("matchType = %v, want %v", got.MatchType, tt.want)
			}
			if got.Confidence != tt.conf {
				t.Fatalf("confidence = %d, want %d", got.Confidence, tt.conf)
			}
			if got.RequiresHumanReview != tt.review {
				t.Fatalf("review = %v, want %v", got.RequiresHumanReview, tt.review)
			}
			if tt.want == MatchNone && got.MatchedEntry != nil {
				t.Fatal("none match must not carry an entry")
			}
		})
	}
}

func TestMatchTieFavoursLowestIndex(t *testing.T) {
	got := New(DefaultPolicy(), nil).Match("room-ab-en.mp3", "room", slugs("ab", "AB"))
	if got.MatchedEntry.Index != 0 {
		t.Fatalf("matched index = %d, want 0", got.MatchedEntry.Index)
	}
}

func TestBatchMatchOrphansIsTotal(t *testing.T) {
	files := []string{"room-intro-en.mp3", "room-zzzz-en.mp3", "noise.txt", "room-2-vi.mp3"}
	batch := New(DefaultPolicy(), nil).BatchMatchOrphans(files, "room", slugs("intro", "outro"))
	if len(batch.AutoRepairs)+len(batch.HumanReview) != len(files) {
		t.Fatalf("partition lost files: %+v", batch)
	}
	if len(batch.AutoRepairs) != 1 || batch.AutoRepairs[0].Filename != "room-intro-en.mp3" {
		t.Fatalf("auto repairs = %+v", batch.AutoRepairs)
	}
}

func TestRoomConsistency(t *testing.T) {
	files := []string{"room-intro-en.mp3", "room-intro-vi.mp3", "room-outro-en.mp3", "stray-en.mp3"}
	got := New(DefaultPolicy(), nil).RoomConsistency("room", slugs("intro", "outro"), files)
	if got.Entries[0].EN != "room-intro-en.mp3" || got.Entries[0].VI != "room-intro-vi.mp3" {
		t.Fatalf("entry 0 = %+v", got.Entries[0])
	}
	if got.Entries[1].EN != "room-outro-en.mp3" || got.Entries[1].VI != "" {
		t.Fatalf("entry 1 = %+v", got.Entries[1])
	}
	if len(got.MissingEntries) != 1 || got.MissingEntries[0] != 1 {
		t.Fatalf("missing = %v", got.MissingEntries)
	}
	if len(got.Unmatched) != 1 || got.Unmatched[0] != "stray-en.mp3" {
		t.Fatalf("unmatched = %v", got.Unmatched)
	}
}
