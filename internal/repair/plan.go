package repair

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"audiopilot/internal/integrity"
	"audiopilot/internal/matcher"
	"audiopilot/internal/naming"
	"audiopilot/internal/room"
	"audiopilot/internal/textutil"
)

// Confidence values assigned to planned operations.
const (
	caseRenameConfidence     = 99
	duplicateMoveConfidence  = 75
	nearDuplicateConfidence  = 70
	reversedRefConfidence    = 95
	jsonUpdateConfidence     = 90
	createReferenceConfidenc = 90
	generateConfidence       = 100
	quarantineConfidence     = 40
	competingAttachConfidenc = 60
)

// PlanRoom proposes structural repairs for a room: case-only renames of
// found files, renames of drifted names onto missing canonical names,
// quarantine of duplicates, and entry audio reference fixes.
func PlanRoom(roomID string, ids []room.Identity, rec integrity.RoomIntegrity) []Operation {
	var ops []Operation

	for _, observed := range rec.Found {
		canonical := strings.ToLower(strings.TrimSpace(observed))
		if observed != canonical {
			lang, _ := naming.ExtractLanguage(observed)
			ops = append(ops, New(OpRename, roomID, observed, canonical, lang, caseRenameConfidence, PriorityLow,
				"case-only rename to canonical form"))
		}
	}

	missing := make(map[string]bool, len(rec.Missing))
	for _, name := range rec.Missing {
		missing[name] = true
	}
	claimed := make(map[string]bool)
	for _, file := range rec.MismatchedLang {
		lang, ok := naming.ExtractLanguage(file)
		if !ok {
			continue
		}
		target, score, found := closestExpected(file, rec.Expected, lang)
		confidence := int(math.Round(score * 100))
		if !found || !missing[target] || claimed[target] {
			ops = append(ops, New(OpMoveDuplicate, roomID, file, DuplicateDir+"/"+file, lang, nearDuplicateConfidence, PriorityNormal,
				fmt.Sprintf("near copy of existing %q", target)))
			continue
		}
		claimed[target] = true
		ops = append(ops, New(OpRename, roomID, file, target, lang, confidence, PriorityHigh,
			"rename drifted name to canonical form"))
	}

	for _, dup := range rec.Duplicates {
		lang, _ := naming.ExtractLanguage(dup)
		ops = append(ops, New(OpMoveDuplicate, roomID, dup, DuplicateDir+"/"+dup, lang, duplicateMoveConfidence, PriorityNormal,
			"duplicate of a canonical file"))
	}

	ops = append(ops, planReferences(roomID, ids)...)
	return ops
}

// closestExpected picks the expected name of the same language with the
// highest similarity to file.
func closestExpected(file string, expected []string, lang naming.Language) (string, float64, bool) {
	suffix := "-" + string(lang) + ".mp3"
	candidates := make([]string, 0, len(expected))
	for _, name := range expected {
		if strings.HasSuffix(name, suffix) {
			candidates = append(candidates, name)
		}
	}
	best, ok := textutil.BestMatch(naming.NormalizeFilename(file), candidates)
	return best.Value, best.Score, ok
}

// planReferences compares each entry's stored audio reference with its
// canonical pair. Entries without a stored reference are left alone.
func planReferences(roomID string, ids []room.Identity) []Operation {
	var ops []Operation
	for _, id := range ids {
		if id.Audio == nil {
			continue
		}
		pair := id.Pair(roomID)
		slug := id.Token()
		current := naming.Pair{EN: id.Audio.EN, VI: id.Audio.VI}
		legacy := id.Audio.Legacy
		swapped := current.EN != "" && current.VI != "" &&
			strings.EqualFold(current.EN, pair.VI) && strings.EqualFold(current.VI, pair.EN)
		for _, lang := range naming.Languages() {
			want := pair.For(lang)
			have := current.For(lang)
			switch {
			case swapped:
				ops = append(ops, New(OpFixJSONRef, roomID, have, want, lang, reversedRefConfidence, PriorityCritical,
					"entry audio languages are reversed").WithEntry(slug))
			case legacy != "":
				ops = append(ops, New(OpUpdateJSON, roomID, legacy, want, lang, jsonUpdateConfidence, PriorityNormal,
					"replace single audio reference with per-language pair").WithEntry(slug))
			case have != want:
				ops = append(ops, New(OpUpdateJSON, roomID, have, want, lang, jsonUpdateConfidence, PriorityNormal,
					"entry audio reference is not canonical").WithEntry(slug))
			}
		}
	}
	return ops
}

// PlanMissing proposes content for every missing canonical file that no
// planned operation already produces. With generate set it requests TTS
// generation; otherwise it records a reference for an external producer.
// A file whose counterpart language exists is a parity gap and gets
// critical priority.
func PlanMissing(roomID string, rec integrity.RoomIntegrity, planned []Operation, generate bool) []Operation {
	produced := make(map[string]bool)
	for _, op := range planned {
		if op.Type.MovesFile() {
			produced[op.Target] = true
		}
	}
	present := make(map[string]bool, len(rec.Found))
	for _, f := range rec.Found {
		present[strings.ToLower(f)] = true
	}

	var ops []Operation
	for _, name := range rec.Missing {
		if produced[name] {
			continue
		}
		lang, _ := naming.ExtractLanguage(name)
		priority := PriorityHigh
		if present[counterpart(name, lang)] || produced[counterpart(name, lang)] {
			priority = PriorityCritical
		}
		if generate {
			ops = append(ops, New(OpGenerateTTS, roomID, "", name, lang, generateConfidence, priority,
				fmt.Sprintf("generate %s audio", strings.ToUpper(string(lang)))).WithEntry(entryToken(name, roomID)))
			continue
		}
		ops = append(ops, New(OpCreateReference, roomID, "", name, lang, createReferenceConfidenc, priority,
			"missing audio file needs a producer").WithEntry(entryToken(name, roomID)))
	}
	return ops
}

func counterpart(name string, lang naming.Language) string {
	stem, ok := naming.StripLanguageSuffix(name)
	if !ok {
		return ""
	}
	return stem + "-" + string(lang.Other()) + ".mp3"
}

func entryToken(name, roomID string) string {
	return naming.SlugPart(name, roomID)
}

// PlanOrphans turns orphan match results into operations. Confident
// matches onto a missing canonical name attach the orphan; other matches
// onto existing names are redundant copies; the rest are quarantined.
func PlanOrphans(roomID string, rec integrity.RoomIntegrity, batch matcher.Batch) []Operation {
	missing := make(map[string]bool, len(rec.Missing))
	for _, name := range rec.Missing {
		missing[name] = true
	}
	auto := slices.Clone(batch.AutoRepairs)
	slices.SortFunc(auto, func(a, b matcher.Match) int {
		if a.Confidence != b.Confidence {
			return b.Confidence - a.Confidence
		}
		return strings.Compare(a.Filename, b.Filename)
	})

	var ops []Operation
	claimed := make(map[string]bool)
	for _, match := range auto {
		target := match.SuggestedCanonical
		switch {
		case missing[target] && !claimed[target]:
			claimed[target] = true
			ops = append(ops, New(OpAttachOrphan, roomID, match.Filename, target, match.Language, match.Confidence, PriorityHigh,
				fmt.Sprintf("semantic match (%s) with %d%% confidence", match.MatchType, match.Confidence)).WithEntry(match.MatchedEntry.Token))
		case claimed[target]:
			ops = append(ops, New(OpMoveDuplicate, roomID, match.Filename, DuplicateDir+"/"+match.Filename, match.Language, competingAttachConfidenc, PriorityNormal,
				fmt.Sprintf("competes with another orphan for %q", target)))
		default:
			ops = append(ops, New(OpMoveDuplicate, roomID, match.Filename, DuplicateDir+"/"+match.Filename, match.Language, nearDuplicateConfidence, PriorityNormal,
				fmt.Sprintf("redundant copy of existing %q", target)))
		}
	}
	for _, match := range batch.HumanReview {
		reason := "orphan with no confident entry match"
		if match.Matched() {
			reason = fmt.Sprintf("orphan; best guess %q at %d%%", match.SuggestedCanonical, match.Confidence)
		}
		ops = append(ops, New(OpDeleteOrphan, roomID, match.Filename, OrphanDir+"/"+match.Filename, match.Language, quarantineConfidence, PriorityLow, reason))
	}
	return ops
}

// ManifestUpdate returns a manifest refresh for the room when any planned
// operation changes storage.
func ManifestUpdate(roomID string, ops []Operation) (Operation, bool) {
	for _, op := range ops {
		if op.RoomID == roomID && (op.Type.MovesFile() || op.Type.CreatesFile()) {
			return New(OpUpdateManifest, roomID, "", naming.NormalizeRoomID(roomID), "", 100, PriorityLow,
				"refresh manifest after storage changes"), true
		}
	}
	return Operation{}, false
}

// DropSuperseded removes creation requests for targets that an attach
// operation fills with existing audio.
func DropSuperseded(ops []Operation) []Operation {
	attached := make(map[string]bool)
	for _, op := range ops {
		if op.Type == OpAttachOrphan {
			attached[op.Target] = true
		}
	}
	out := ops[:0:0]
	for _, op := range ops {
		if op.Type.CreatesFile() && attached[op.Target] {
			continue
		}
		out = append(out, op)
	}
	return out
}
