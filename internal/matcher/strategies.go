package matcher

import (
	"regexp"
	"strconv"
	"strings"

	"audiopilot/internal/naming"
	"audiopilot/internal/room"
	"audiopilot/internal/textutil"
)

// Index resolution confidences, strongest first.
const (
	explicitIndexScore  = 0.95
	numericIDScore      = 0.92
	positionScore       = 0.85
	positionOneBasedScr = 0.82
)

type candidate struct {
	Identity  room.Identity
	Score     float64
	MatchType MatchType
	Reason    string
}

var digitRun = regexp.MustCompile(`\d+`)

// resolveIndex maps a numeric token onto an entry: authored index first,
// then a slug or id written as that number, then the position read as
// 0-based and finally as 1-based.
func resolveIndex(n int, ids []room.Identity) (candidate, bool) {
	for _, id := range ids {
		if id.ExplicitIndex != nil && *id.ExplicitIndex == n {
			return candidate{Identity: id, Score: explicitIndexScore, MatchType: MatchIndex, Reason: "explicit_index"}, true
		}
	}
	for _, id := range ids {
		if v, ok := id.NumericValue(); ok && v == n {
			return candidate{Identity: id, Score: numericIDScore, MatchType: MatchIndex, Reason: "numeric_identity"}, true
		}
	}
	if n >= 0 && n < len(ids) {
		return candidate{Identity: ids[n], Score: positionScore, MatchType: MatchIndex, Reason: "position"}, true
	}
	if n-1 >= 0 && n-1 < len(ids) {
		return candidate{Identity: ids[n-1], Score: positionOneBasedScr, MatchType: MatchIndex, Reason: "position_one_based"}, true
	}
	return candidate{}, false
}

func exactStrategy(filename, roomID string, ids []room.Identity, lang naming.Language) (candidate, bool) {
	lower := strings.ToLower(strings.TrimSpace(filename))
	for _, id := range ids {
		if lower == id.Pair(roomID).For(lang) {
			return candidate{Identity: id, Score: 1, MatchType: MatchExact, Reason: "canonical_name"}, true
		}
	}
	return candidate{}, false
}

func slugStrategy(part string, ids []room.Identity) (candidate, bool) {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, id.Token())
	}
	best, ok := textutil.BestMatch(part, tokens)
	if !ok {
		return candidate{}, false
	}
	return candidate{Identity: ids[best.Index], Score: best.Score, MatchType: MatchSlug, Reason: "slug_similarity"}, true
}

func indexStrategy(part string, ids []room.Identity) (candidate, bool) {
	for _, digits := range digitRun.FindAllString(part, -1) {
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		if c, ok := resolveIndex(n, ids); ok {
			c.Reason = "embedded_number_" + c.Reason
			return c, true
		}
	}
	return candidate{}, false
}

func levenshteinStrategy(filename, roomID string, ids []room.Identity, lang naming.Language) (candidate, bool) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.Pair(roomID).For(lang))
	}
	best, ok := textutil.BestMatch(strings.ToLower(strings.TrimSpace(filename)), names)
	if !ok {
		return candidate{}, false
	}
	return candidate{Identity: ids[best.Index], Score: best.Score, MatchType: MatchLevenshtein, Reason: "edit_distance"}, true
}
