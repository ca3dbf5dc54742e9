package room

import (
	"encoding/json"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestResolveFallbackChain(t *testing.T) {
	entries := []Entry{
		{Slug: StrPtr("Intro Talk")},
		{ID: NumericID(7)},
		{ID: TextID("Breath_Work")},
		{Index: IntPtr(0)},
		{},
		{Slug: StrPtr("  !! "), Index: IntPtr(9)},
	}
	ids := Resolve(entries)
	want := []struct {
		kind  IdentityKind
		token string
	}{
		{BySlug, "intro-talk"},
		{ByID, "entry-7"},
		{ByID, "breath-work"},
		{ByIndex, "entry-0"},
		{ByIndex, "entry-4"},
		{ByIndex, "entry-9"},
	}
	for i, w := range want {
		if ids[i].Kind != w.kind || ids[i].Token() != w.token {
			t.Fatalf("identity %d = %v/%q, want %v/%q", i, ids[i].Kind, ids[i].Token(), w.kind, w.token)
		}
		if ids[i].Position != i {
			t.Fatalf("identity %d position = %d", i, ids[i].Position)
		}
	}
}

func TestExplicitZeroIndexIsPresent(t *testing.T) {
	ids := Resolve([]Entry{{}, {Index: IntPtr(0)}})
	if ids[1].ExplicitIndex == nil || *ids[1].ExplicitIndex != 0 {
		t.Fatal("expected explicit zero index to be preserved")
	}
	if ids[0].ExplicitIndex != nil {
		t.Fatal("expected absent index to stay nil")
	}
}

func TestNumericValue(t *testing.T) {
	ids := Resolve([]Entry{{Slug: StrPtr("2")}, {ID: NumericID(3)}, {Slug: StrPtr("intro")}, {}})
	if n, ok := ids[0].NumericValue(); !ok || n != 2 {
		t.Fatalf("slug numeric value = %d/%v", n, ok)
	}
	if n, ok := ids[1].NumericValue(); !ok || n != 3 {
		t.Fatalf("id numeric value = %d/%v", n, ok)
	}
	if _, ok := ids[2].NumericValue(); ok {
		t.Fatal("intro should not be numeric")
	}
	if _, ok := ids[3].NumericValue(); ok {
		t.Fatal("index identities have no numeric slug value")
	}
}

func TestCanonicalSetDeduplicates(t *testing.T) {
	ids := Resolve([]Entry{{Slug: StrPtr("a")}, {Slug: StrPtr("A")}, {Slug: StrPtr("b")}})
	got := CanonicalSet("room", ids)
	want := []string{"room-a-en.mp3", "room-a-vi.mp3", "room-b-en.mp3", "room-b-vi.mp3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CanonicalSet = %v, want %v", got, want)
	}
}

func TestEntryDecodeJSON(t *testing.T) {
	raw := `[{"id": 2, "audio": "legacy.mp3"}, {"id": "abc", "audio": {"en": "x-en.mp3", "vi": "x-vi.mp3"}}, {"index": 0}]`
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n, ok := entries[0].ID.Number(); !ok || n != 2 {
		t.Fatalf("numeric id = %d/%v", n, ok)
	}
	if !entries[0].Audio.IsLegacy() {
		t.Fatal("expected legacy audio ref")
	}
	if _, ok := entries[1].ID.Number(); ok {
		t.Fatal("string id decoded as number")
	}
	if entries[1].Audio.VI != "x-vi.mp3" {
		t.Fatalf("audio vi = %q", entries[1].Audio.VI)
	}
	if entries[2].Index == nil || *entries[2].Index != 0 {
		t.Fatal("index 0 lost during decode")
	}
	out, err := json.Marshal(entries[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"id":2,"audio":"legacy.mp3"}` {
		t.Fatalf("marshal = %s", out)
	}
}

func TestEntryDecodeYAML(t *testing.T) {
	raw := "- id: 4\n  audio:\n    en: a-en.mp3\n- id: \"5\"\n  slug: five\n"
	var entries []Entry
	if err := yaml.Unmarshal([]byte(raw), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n, ok := entries[0].ID.Number(); !ok || n != 4 {
		t.Fatalf("yaml numeric id = %d/%v", n, ok)
	}
	if entries[0].Audio == nil || entries[0].Audio.EN != "a-en.mp3" {
		t.Fatal("yaml audio map not decoded")
	}
	if _, ok := entries[1].ID.Number(); ok {
		t.Fatal("quoted yaml id decoded as number")
	}
}
