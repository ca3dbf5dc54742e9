package naming

import "testing"

func TestNormalizeRoomID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"anger-management", "anger-management"},
		{"English_Foundation_EF01", "english-foundation-ef01"},
		{"  Calm   Room  ", "calm-room"},
		{"--room__a--", "room-a"},
		{"Phòng Tĩnh Lặng", "phong-tinh-lang"},
		{"Đời Sống", "doi-song"},
		{"room!@#b", "roomb"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeRoomID(tt.in); got != tt.want {
			t.Errorf("NormalizeRoomID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizationIdempotent(t *testing.T) {
	inputs := []string{
		"Anger_Room", " x  y ", "__", "Phòng-Đẹp", "a--b--c", "Entry 2", "ROOM-ENTRY-1-EN.MP3", "'quoted_file-vi.mp3",
	}
	for _, in := range inputs {
		once := NormalizeRoomID(in)
		if twice := NormalizeRoomID(once); twice != once {
			t.Fatalf("NormalizeRoomID not idempotent for %q: %q then %q", in, once, twice)
		}
		f := NormalizeFilename(in)
		if again := NormalizeFilename(f); again != f {
			t.Fatalf("NormalizeFilename not idempotent for %q: %q then %q", in, f, again)
		}
	}
}

func TestCanonicalPair(t *testing.T) {
	pair := CanonicalPair("Anger_Room", "Entry One")
	if pair.EN != "anger-room-entry-one-en.mp3" {
		t.Fatalf("EN = %q", pair.EN)
	}
	if pair.VI != "anger-room-entry-one-vi.mp3" {
		t.Fatalf("VI = %q", pair.VI)
	}
	if got := CanonicalFilename("room", NormalizeIndex(0), LangVI); got != "room-entry-0-vi.mp3" {
		t.Fatalf("index canonical = %q", got)
	}
}

func TestLanguageRoundTrip(t *testing.T) {
	rooms := []string{"room", "Anger_Room", "", "Phòng"}
	slugs := []string{"intro", "2", "entry-7", "Hello World"}
	for _, r := range rooms {
		for _, s := range slugs {
			pair := CanonicalPair(r, s)
			for _, lang := range Languages() {
				got, ok := ExtractLanguage(pair.For(lang))
				if !ok || got != lang {
					t.Fatalf("ExtractLanguage(%q) = %q/%v, want %q", pair.For(lang), got, ok, lang)
				}
			}
		}
	}
}

func TestExtractLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"room-a-en.mp3", LangEN, true},
		{"room-a-VI.MP3", LangVI, true},
		{"room_a_en.mp3", LangEN, true},
		{"room-a.mp3", "", false},
		{"room-a-fr.mp3", "", false},
		{"room-a-en.wav", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractLanguage(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExtractLanguage(%q) = %q/%v, want %q/%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSlugPartAndTrailingToken(t *testing.T) {
	if got := SlugPart("Anger_Room-Entry_2-en.mp3", "anger-room"); got != "entry-2" {
		t.Fatalf("SlugPart = %q", got)
	}
	token, ok := TrailingToken("anger-room-entry-2-en.mp3")
	if !ok || token != "2" || !IsNumeric(token) {
		t.Fatalf("TrailingToken = %q/%v", token, ok)
	}
	token, ok = TrailingToken("room-intro-vi.mp3")
	if !ok || token != "intro" || IsNumeric(token) {
		t.Fatalf("TrailingToken = %q/%v", token, ok)
	}
	if _, ok := TrailingToken("room-intro.mp3"); ok {
		t.Fatal("expected no token without language suffix")
	}
}

func TestHasRoomPrefix(t *testing.T) {
	if !HasRoomPrefix("Room_A-intro-en.mp3", "room-a") {
		t.Fatal("expected prefix match")
	}
	if HasRoomPrefix("room-b-intro-en.mp3", "room-a") {
		t.Fatal("unexpected prefix match")
	}
	if HasRoomPrefix("room-ab-intro-en.mp3", "room-a") {
		t.Fatal("prefix must end at a separator")
	}
}
