package governance

import (
	"slices"
	"strings"

	"audiopilot/internal/repair"
	"audiopilot/internal/room"
	"audiopilot/internal/validation"
)

// ProjectState applies ops to storage and returns the resulting live
// listing, sorted. Files moved into a quarantine folder leave the listing.
func ProjectState(storage []string, ops []repair.Operation) []string {
	live := make(map[string]string, len(storage))
	for _, f := range storage {
		live[strings.ToLower(f)] = f
	}
	for _, op := range ops {
		switch {
		case op.Type.MovesFile():
			delete(live, strings.ToLower(op.Source))
			if !quarantined(op.Target) {
				live[strings.ToLower(op.Target)] = op.Target
			}
		case op.Type.CreatesFile():
			live[strings.ToLower(op.Target)] = op.Target
		}
	}
	out := make([]string, 0, len(live))
	for _, f := range live {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func quarantined(target string) bool {
	return strings.HasPrefix(target, repair.OrphanDir+"/") || strings.HasPrefix(target, repair.DuplicateDir+"/")
}

// UnpairedRooms returns, sorted, the ids of rooms with an entry that has
// exactly one of its EN/VI canonical files in projected.
func UnpairedRooms(projected []string, rooms []room.Room) []string {
	present := make(map[string]struct{}, len(projected))
	for _, f := range projected {
		present[strings.ToLower(f)] = struct{}{}
	}
	var out []string
	for _, r := range rooms {
		for _, id := range r.Identities() {
			pair := id.Pair(r.ID)
			_, en := present[pair.EN]
			_, vi := present[pair.VI]
			if en != vi {
				out = append(out, r.ID)
				break
			}
		}
	}
	slices.Sort(out)
	return out
}

// RunMultiPassVerification re-checks every approved decision against the
// projected state and demotes it to review when the state does not bear it
// out: the target is absent (or a deleted source survives), the target name
// is invalid or not canonical for its room, or another operation writes the
// same target. It reports whether anything was demoted.
func RunMultiPassVerification(decisions []Decision, projected []string, rooms []room.Room) ([]Decision, bool) {
	present := make(map[string]struct{}, len(projected))
	for _, f := range projected {
		present[strings.ToLower(f)] = struct{}{}
	}
	writers := make(map[string]int)
	for _, d := range decisions {
		if d.Decision.Approved() && writesFile(d.Operation) {
			writers[strings.ToLower(d.Operation.Target)]++
		}
	}
	canonical := make(map[string]map[string]struct{}, len(rooms))
	for _, r := range rooms {
		set := make(map[string]struct{})
		for _, name := range room.CanonicalSet(r.ID, r.Identities()) {
			set[name] = struct{}{}
		}
		canonical[r.ID] = set
	}

	out := slices.Clone(decisions)
	demoted := false
	for i := range out {
		d := &out[i]
		if !d.Decision.Approved() {
			continue
		}
		if reason, failed := verify(d.Operation, present, writers, canonical); failed {
			d.restrict(RequiresReview, RuleMultiPassValidation, reason)
			demoted = true
		}
	}
	return out, demoted
}

func writesFile(op repair.Operation) bool {
	return (op.Type.MovesFile() || op.Type.CreatesFile()) && !quarantined(op.Target)
}

func verify(op repair.Operation, present map[string]struct{}, writers map[string]int, canonical map[string]map[string]struct{}) (string, bool) {
	target := strings.ToLower(op.Target)
	switch op.Type {
	case repair.OpUpdateManifest:
		return "", false
	case repair.OpDeleteOrphan, repair.OpMoveDuplicate:
		if _, ok := present[strings.ToLower(op.Source)]; ok {
			return "source is still present after quarantine", true
		}
		return "", false
	}
	if _, ok := present[target]; !ok {
		return "target is absent from the projected state", true
	}
	if result := validation.Validate(op.Target); !result.IsValid {
		return "target name fails validation: " + strings.Join(result.Violations, "; "), true
	}
	if set, ok := canonical[op.RoomID]; ok {
		if _, ok := set[target]; !ok {
			return "target is not a canonical name of room " + op.RoomID, true
		}
	}
	if writesFile(op) && writers[target] > 1 {
		return "another operation writes the same target", true
	}
	return "", false
}
