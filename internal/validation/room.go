package validation

import (
	"math"
	"slices"
	"sort"

	"audiopilot/internal/naming"
	"audiopilot/internal/textutil"
)

const (
	baseConfidence    = 50
	prefixBonus       = 20
	entryBonus        = 20
	maxFuzzyBonus     = 10
	duplicatePenalty  = 20
	minConfidence     = 0
	maxConfidenceRoom = 100
)

// RoomResult extends Result with room-aware findings.
type RoomResult struct {
	Result
	RoomID          string `json:"roomId"`
	RoomIDMatch     bool   `json:"roomIdMatch"`
	EntryMatch      bool   `json:"entryMatch"`
	SuggestedSlug   string `json:"suggestedSlug,omitempty"`
	DuplicateOf     string `json:"duplicateOf,omitempty"`
	ConfidenceScore int    `json:"confidenceScore"`
}

// ValidateWithRoomContext validates filename as a member of roomID. When
// entrySlugs is non-empty the entry portion must match one of them; when
// siblings is non-empty any other name that normalizes identically is
// reported as a duplicate.
func ValidateWithRoomContext(filename, roomID string, entrySlugs, siblings []string, policy Policy) RoomResult {
	policy = policy.normalized()
	res := RoomResult{Result: Validate(filename), RoomID: roomID}
	score := baseConfidence

	prefix := naming.RoomPrefix(roomID)
	if naming.HasRoomPrefix(filename, roomID) {
		res.RoomIDMatch = true
		score += prefixBonus
	} else {
		res.add(SeverityCritical, "must start with %q", prefix)
	}

	lang, hasLang := naming.ExtractLanguage(filename)
	if len(entrySlugs) > 0 {
		part := naming.SlugPart(filename, roomID)
		canon := make([]string, 0, len(entrySlugs))
		for _, slug := range entrySlugs {
			canon = append(canon, naming.NormalizeEntrySlug(slug))
		}
		if slices.Contains(canon, part) {
			res.EntryMatch = true
			score += entryBonus
			if hasLang {
				res.ExpectedCanonicalName = naming.CanonicalFilename(roomID, part, lang)
			}
		} else {
			best, ok := textutil.BestMatch(part, canon)
			if ok && best.Score > policy.SuggestThreshold {
				res.SuggestedSlug = best.Value
				score += int(math.Round(maxFuzzyBonus * best.Score))
				res.add(SeverityCritical, "entry %q not found in room; closest is %q", part, best.Value)
				if hasLang {
					res.ExpectedCanonicalName = naming.CanonicalFilename(roomID, best.Value, lang)
				}
			} else {
				res.add(SeverityCritical, "entry %q not found in room", part)
			}
		}
	}

	if len(siblings) > 0 {
		normalized := naming.NormalizeFilename(filename)
		for _, sibling := range siblings {
			if sibling == filename {
				continue
			}
			if naming.NormalizeFilename(sibling) == normalized {
				res.DuplicateOf = sibling
				score -= duplicatePenalty
				res.add(SeverityCritical, "duplicate of %q", sibling)
				break
			}
		}
	}

	res.ConfidenceScore = min(max(score, minConfidence), maxConfidenceRoom)
	return res
}

// DuplicateGroup is a set of filenames that normalize to the same name.
type DuplicateGroup struct {
	Normalized string   `json:"normalized"`
	Files      []string `json:"files"`
	// Keep is the file to retain: the one already in canonical form when
	// present, otherwise the first seen.
	Keep string `json:"keep"`
}

// DetectDuplicates groups filenames whose normalized forms collide. Groups
// are sorted by normalized name and keep input order inside.
func DetectDuplicates(filenames []string) []DuplicateGroup {
	groups := make(map[string][]string)
	for _, name := range filenames {
		key := naming.NormalizeFilename(name)
		groups[key] = append(groups[key], name)
	}
	var out []DuplicateGroup
	for key, files := range groups {
		if len(files) < 2 {
			continue
		}
		keep := files[0]
		for _, f := range files {
			if f == key {
				keep = f
				break
			}
		}
		out = append(out, DuplicateGroup{Normalized: key, Files: files, Keep: keep})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Normalized < out[j].Normalized })
	return out
}
