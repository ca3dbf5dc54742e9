package naming

import (
	"fmt"
	"regexp"
	"strings"
)

// Language is an audio track language.
type Language string

const (
	LangEN Language = "en"
	LangVI Language = "vi"
)

// Languages lists every supported language in canonical order.
func Languages() []Language {
	return []Language{LangEN, LangVI}
}

// Other returns the counterpart language used for parity checks.
func (l Language) Other() Language {
	switch l {
	case LangEN:
		return LangVI
	case LangVI:
		return LangEN
	default:
		return ""
	}
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return l == LangEN || l == LangVI
}

// ParseLanguage converts a string such as "EN" into a Language.
func ParseLanguage(value string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(value)))
	if !lang.Valid() {
		return "", fmt.Errorf("unsupported language %q", value)
	}
	return lang, nil
}

var languageSuffix = regexp.MustCompile(`(?i)[-_](en|vi)\.mp3$`)

// ExtractLanguage returns the language encoded in the filename suffix.
func ExtractLanguage(filename string) (Language, bool) {
	match := languageSuffix.FindStringSubmatch(strings.TrimSpace(filename))
	if match == nil {
		return "", false
	}
	return Language(strings.ToLower(match[1])), true
}

// StripLanguageSuffix removes a recognised language suffix. ok is false when
// the filename carries none.
func StripLanguageSuffix(filename string) (string, bool) {
	loc := languageSuffix.FindStringIndex(filename)
	if loc == nil {
		return filename, false
	}
	return filename[:loc[0]], true
}
