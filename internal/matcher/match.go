package matcher

import (
	"fmt"

	"audiopilot/internal/naming"
)

// MatchType names the strategy that produced a match.
type MatchType int

const (
	MatchNone MatchType = iota
	MatchExact
	MatchSlug
	MatchIndex
	MatchLevenshtein
)

func (t MatchType) String() string {
	switch t {
	case MatchNone:
		return "none"
	case MatchExact:
		return "exact"
	case MatchSlug:
		return "slug"
	case MatchIndex:
		return "index"
	case MatchLevenshtein:
		return "levenshtein"
	default:
		return fmt.Sprintf("matchtype(%d)", int(t))
	}
}

func (t MatchType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *MatchType) UnmarshalText(text []byte) error {
	for _, candidate := range []MatchType{MatchNone, MatchExact, MatchSlug, MatchIndex, MatchLevenshtein} {
		if candidate.String() == string(text) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown match type %q", text)
}

// EntryRef points at the matched entry.
type EntryRef struct {
	Slug  string `json:"slug"`
	Token string `json:"token"`
	Index int    `json:"index"`
}

// Match is the outcome of resolving one filename.
type Match struct {
	Filename            string          `json:"filename"`
	Language            naming.Language `json:"language,omitempty"`
	MatchedEntry        *EntryRef       `json:"matchedEntry"`
	Confidence          int             `json:"confidence"`
	MatchType           MatchType       `json:"matchType"`
	SuggestedCanonical  string          `json:"suggestedCanonical,omitempty"`
	RequiresHumanReview bool            `json:"requiresHumanReview"`
}

// Matched reports whether an entry was resolved.
func (m Match) Matched() bool {
	return m.MatchedEntry != nil
}

func noMatch(filename string, lang naming.Language) Match {
	return Match{
		Filename:            filename,
		Language:            lang,
		MatchType:           MatchNone,
		RequiresHumanReview: true,
	}
}
