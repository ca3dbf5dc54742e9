package naming

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorRun   = regexp.MustCompile(`[_\s]+`)
	tokenDisallow  = regexp.MustCompile(`[^a-z0-9-]`)
	fileDisallow   = regexp.MustCompile(`[^a-z0-9.-]`)
	hyphenRun      = regexp.MustCompile(`-+`)
	strokeReplacer = strings.NewReplacer("đ", "d", "Đ", "D")
)

// fold strips diacritics so Vietnamese room names keep their letters.
func fold(value string) string {
	value = strokeReplacer.Replace(value)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

func normalizeToken(value string, disallow *regexp.Regexp) string {
	value = strings.TrimSpace(strings.ToLower(fold(value)))
	value = separatorRun.ReplaceAllString(value, "-")
	value = disallow.ReplaceAllString(value, "")
	value = hyphenRun.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// NormalizeRoomID lowercases the room id and collapses separators to single
// hyphens.
func NormalizeRoomID(roomID string) string {
	return normalizeToken(roomID, tokenDisallow)
}

// NormalizeEntrySlug applies the room id rules to an entry slug.
func NormalizeEntrySlug(slug string) string {
	return normalizeToken(slug, tokenDisallow)
}

// NormalizeIndex renders a numeric entry identity.
func NormalizeIndex(n int) string {
	return "entry-" + strconv.Itoa(n)
}

// NormalizeFilename maps a filename into comparison space. Dots survive so
// the extension stays intact.
func NormalizeFilename(filename string) string {
	return normalizeToken(filename, fileDisallow)
}

// RoomPrefix returns the prefix every file of the room starts with.
func RoomPrefix(roomID string) string {
	return NormalizeRoomID(roomID) + "-"
}

// HasRoomPrefix reports whether the normalized filename belongs to roomID.
func HasRoomPrefix(filename, roomID string) bool {
	return strings.HasPrefix(NormalizeFilename(filename), RoomPrefix(roomID))
}

// SlugPart strips the room prefix and language suffix from a normalized
// filename, leaving the entry portion.
func SlugPart(filename, roomID string) string {
	normalized := NormalizeFilename(filename)
	normalized = strings.TrimPrefix(normalized, RoomPrefix(roomID))
	stripped, _ := StripLanguageSuffix(normalized)
	return stripped
}

// TrailingToken returns the hyphen separated token immediately before the
// language suffix. ok is false when the filename has no suffix.
func TrailingToken(filename string) (token string, ok bool) {
	stripped, ok := StripLanguageSuffix(NormalizeFilename(filename))
	if !ok {
		return "", false
	}
	if idx := strings.LastIndexByte(stripped, '-'); idx >= 0 {
		return stripped[idx+1:], true
	}
	return stripped, true
}

// IsNumeric reports whether token is a non-empty run of ASCII digits.
func IsNumeric(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
