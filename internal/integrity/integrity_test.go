package integrity

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"audiopilot/internal/room"
)

func entryOne() []room.Identity {
	return room.Resolve([]room.Entry{{Slug: room.StrPtr("entry-1")}})
}

func TestBuildRoomIntegrityHealthy(t *testing.T) {
	storage := []string{"test-room-entry-1-en.mp3", "test-room-entry-1-vi.mp3"}
	got := BuildRoomIntegrity("test-room", entryOne(), storage, DefaultPolicy())
	if got.Score != 100 {
		t.Fatalf("score = %d, want 100", got.Score)
	}
	if len(got.Missing) != 0 || len(got.Orphans) != 0 {
		t.Fatalf("unexpected issues %+v", got)
	}
}

func TestBuildRoomIntegrityMissingVI(t *testing.T) {
	got := BuildRoomIntegrity("test-room", entryOne(), []string{"test-room-entry-1-en.mp3"}, DefaultPolicy())
	if !reflect.DeepEqual(got.Missing, []string{"test-room-entry-1-vi.mp3"}) {
		t.Fatalf("missing = %v", got.Missing)
	}
	if got.Score >= 100 {
		t.Fatalf("score = %d, want < 100", got.Score)
	}
}

func TestBuildRoomIntegrityClassification(t *testing.T) {
	ids := room.Resolve([]room.Entry{{Slug: room.StrPtr("intro")}, {Slug: room.StrPtr("outro")}})
	storage := []string{
		"room-intro-en.mp3",
		"ROOM-INTRO-EN.mp3",
		"room-intro-vi.mp3",
		"room_outro-en.mp3",
		"room-something-else-entirely-vi.mp3",
		"room-readme.txt",
		"other-intro-en.mp3",
	}
	got := BuildRoomIntegrity("room", ids, storage, DefaultPolicy())
	if !reflect.DeepEqual(got.Found, []string{"room-intro-en.mp3", "room-intro-vi.mp3"}) {
		t.Fatalf("found = %v", got.Found)
	}
	if !reflect.DeepEqual(got.Missing, []string{"room-outro-en.mp3", "room-outro-vi.mp3"}) {
		t.Fatalf("missing = %v", got.Missing)
	}
	if !reflect.DeepEqual(got.Duplicates, []string{"ROOM-INTRO-EN.mp3"}) {
		t.Fatalf("duplicates = %v", got.Duplicates)
	}
	if !reflect.DeepEqual(got.MismatchedLang, []string{"room_outro-en.mp3"}) {
		t.Fatalf("mismatched = %v", got.MismatchedLang)
	}
	if !reflect.DeepEqual(got.Orphans, []string{"room-something-else-entirely-vi.mp3"}) {
		t.Fatalf("orphans = %v", got.Orphans)
	}
	if !reflect.DeepEqual(got.Unrepairable, []string{"room-readme.txt"}) {
		t.Fatalf("unrepairable = %v", got.Unrepairable)
	}
}

func TestCaseVariantCountsAsFound(t *testing.T) {
	got := BuildRoomIntegrity("test-room", entryOne(), []string{"Test-Room-Entry-1-EN.mp3", "test-room-entry-1-vi.mp3"}, DefaultPolicy())
	if got.Score != 100 {
		t.Fatalf("score = %d, want 100 (%+v)", got.Score, got)
	}
	if got.Found[0] != "Test-Room-Entry-1-EN.mp3" {
		t.Fatalf("found = %v", got.Found)
	}
}

func TestCrossRoomIsolation(t *testing.T) {
	ids := entryOne()
	base := []string{"room-a-entry-1-en.mp3", "room-a-stray-vi.mp3"}
	polluted := append([]string{"room-b-entry-1-en.mp3", "room-b-junk.txt", "room-b-x-vi.mp3"}, base...)
	a := BuildRoomIntegrity("room-a", ids, base, DefaultPolicy())
	b := BuildRoomIntegrity("room-a", ids, polluted, DefaultPolicy())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("room-b files changed room-a integrity:\n%+v\n%+v", a, b)
	}
}

func TestScoreMonotonicWhenMissingFileAdded(t *testing.T) {
	ids := room.Resolve([]room.Entry{{Slug: room.StrPtr("a")}, {Slug: room.StrPtr("b")}, {Slug: room.StrPtr("c")}})
	storage := []string{"r-a-en.mp3", "r_b-en.mp3", "r-zzz-vi.mp3", "r-notes.txt"}
	prev := BuildRoomIntegrity("r", ids, storage, DefaultPolicy())
	for _, missing := range prev.Missing {
		next := BuildRoomIntegrity("r", ids, append(append([]string{}, storage...), missing), DefaultPolicy())
		if next.Score < prev.Score {
			t.Fatalf("adding %s lowered score %d -> %d", missing, prev.Score, next.Score)
		}
	}
}

func TestScoreIsHundredOnlyWhenClean(t *testing.T) {
	ids := entryOne()
	clean := []string{"test-room-entry-1-en.mp3", "test-room-entry-1-vi.mp3"}
	withOrphan := append([]string{"test-room-zzz-qqq-vi.mp3"}, clean...)
	if got := BuildRoomIntegrity("test-room", ids, withOrphan, DefaultPolicy()); got.Score == 100 {
		t.Fatalf("orphan must lower the score: %+v", got)
	}
	if got := BuildRoomIntegrity("test-room", nil, nil, DefaultPolicy()); got.Score != 100 {
		t.Fatalf("empty room score = %d", got.Score)
	}
}

func TestBuildMapLongestPrefixOwnsFile(t *testing.T) {
	rooms := []room.Room{
		{ID: "room-a", Entries: []room.Entry{{Slug: room.StrPtr("x")}}},
		{ID: "room-a-b", Entries: []room.Entry{{Slug: room.StrPtr("y")}}},
	}
	storage := []string{"room-a-x-en.mp3", "room-a-x-vi.mp3", "room-a-b-y-en.mp3", "room-a-b-y-vi.mp3"}
	m := BuildMap(rooms, storage, DefaultPolicy())
	if m["room-a"].Score != 100 || m["room-a-b"].Score != 100 {
		t.Fatalf("nested prefixes leaked: %+v", m)
	}
}

func TestBuildMapCanonicalNameBeatsLongerPrefix(t *testing.T) {
	rooms := []room.Room{
		{ID: "room-a", Entries: []room.Entry{{Slug: room.StrPtr("b-x")}}},
		{ID: "room-a-b", Entries: []room.Entry{{Slug: room.StrPtr("y")}}},
	}
	storage := []string{"room-a-b-x-en.mp3", "room-a-b-x-vi.mp3", "room-a-b-y-en.mp3", "room-a-b-y-vi.mp3"}
	m := BuildMap(rooms, storage, DefaultPolicy())
	if got := m["room-a"]; got.Score != 100 || len(got.Missing) != 0 {
		t.Fatalf("room-a lost its canonical files: %+v", got)
	}
	if got := m["room-a-b"]; got.Score != 100 || len(got.Orphans) != 0 {
		t.Fatalf("room-a-b claimed foreign files: %+v", got)
	}

	cases := []struct {
		file string
		want string
	}{
		{"room-a-b-x-en.mp3", "room-a"},
		{"Room-A-B-X-VI.mp3", "room-a"},
		{"room-a-b-y-en.mp3", "room-a-b"},
		{"room-a-b-zz-en.mp3", "room-a-b"},
		{"room-a-q-en.mp3", "room-a"},
	}
	for _, tc := range cases {
		if got, ok := OwnerRoom(tc.file, rooms); !ok || got != tc.want {
			t.Fatalf("OwnerRoom(%q) = %q, %v; want %q", tc.file, got, ok, tc.want)
		}
	}
}

func TestSummaryAndQueries(t *testing.T) {
	m := Map{
		"b": {RoomID: "b", Expected: []string{"1", "2"}, Found: []string{"1"}, Missing: []string{"2"}, Score: 50},
		"a": {RoomID: "a", Expected: []string{"1"}, Found: []string{"1"}, Score: 100},
		"c": {RoomID: "c", Expected: []string{"1"}, Orphans: []string{"x"}, Missing: []string{"1"}, Score: 50},
	}
	s := Summarize(m)
	if s.TotalRooms != 3 || s.HealthyRooms != 1 || s.RoomsWithIssues != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.AverageScore != 67 {
		t.Fatalf("average = %d, want 67", s.AverageScore)
	}
	lowest := LowestRooms(m, 2)
	if len(lowest) != 2 || lowest[0].RoomID != "b" || lowest[1].RoomID != "c" {
		t.Fatalf("lowest = %+v", lowest)
	}
	orphaned := RoomsWithIssues(m, IssueOrphans)
	if len(orphaned) != 1 || orphaned[0].RoomID != "c" {
		t.Fatalf("rooms with orphans = %+v", orphaned)
	}
	if Summarize(Map{}).AverageScore != 100 {
		t.Fatal("empty map should average 100")
	}
}

func TestExports(t *testing.T) {
	m := Map{"room": BuildRoomIntegrity("room", entryOne(), []string{"room-entry-1-en.mp3"}, DefaultPolicy())}
	var js bytes.Buffer
	if err := WriteJSON(&js, m); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(js.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := doc["summary"]; !ok {
		t.Fatal("missing summary")
	}
	var csvOut bytes.Buffer
	if err := WriteCSV(&csvOut, m); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "room,") {
		t.Fatalf("csv = %q", csvOut.String())
	}
}

func TestParseIssueKind(t *testing.T) {
	kind, err := ParseIssueKind("MismatchedLang")
	if err != nil || kind != IssueMismatchedLang {
		t.Fatalf("ParseIssueKind = %v, %v", kind, err)
	}
	if _, err := ParseIssueKind("bogus"); err == nil {
		t.Fatal("expected error")
	}
}
