package validation

import (
	"math"
	"strings"

	"audiopilot/internal/naming"
)

const canonicalViolationCost = 15

// CanonicalCheck reports how far a filename is from the canonical name of a
// specific entry.
type CanonicalCheck struct {
	IsValid        bool        `json:"isValid"`
	Canonical      naming.Pair `json:"canonical"`
	Violations     []string    `json:"violations"`
	AutoRepairable bool        `json:"autoRepairable"`
	Confidence     int         `json:"confidence"`
}

// CheckCanonical validates filename against roomID and, when entrySlug is
// not empty, against that entry's canonical name. Each violation costs 15
// points of confidence.
func CheckCanonical(filename, roomID, entrySlug string, policy Policy) CanonicalCheck {
	policy = policy.normalized()
	check := CanonicalCheck{Violations: []string{}}
	if entrySlug != "" {
		check.Canonical = naming.CanonicalPair(roomID, entrySlug)
	}
	lower := strings.ToLower(filename)

	if !naming.HasRoomPrefix(filename, roomID) {
		check.Violations = append(check.Violations, "CRITICAL: must start with \""+naming.RoomPrefix(roomID)+"\"")
	}
	if filename != lower {
		check.Violations = append(check.Violations, "must be all lowercase")
	}
	if strings.ContainsAny(filename, "_ ") {
		check.Violations = append(check.Violations, "must use hyphens, not underscores or spaces")
	}
	lang, ok := naming.ExtractLanguage(filename)
	if !ok || !(strings.HasSuffix(lower, "-en.mp3") || strings.HasSuffix(lower, "-vi.mp3")) {
		check.Violations = append(check.Violations, "must end with -en.mp3 or -vi.mp3")
	}
	if entrySlug != "" && ok {
		if want := check.Canonical.For(lang); lower != want {
			check.Violations = append(check.Violations, "should be \""+want+"\"")
		}
	}

	check.Confidence = max(0, 100-canonicalViolationCost*len(check.Violations))
	check.IsValid = len(check.Violations) == 0
	check.AutoRepairable = check.Confidence >= int(math.Round(policy.AutoRepairThreshold*100))
	return check
}
