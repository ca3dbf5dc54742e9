package integrity

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"audiopilot/internal/naming"
	"audiopilot/internal/room"
	"audiopilot/internal/textutil"
)

const (
	defaultDriftThreshold = 0.8
	maxIssuePenalty       = 40
)

// Policy tunes classification.
type Policy struct {
	// DriftThreshold is the similarity above which an unexpected file is
	// treated as a misnamed copy of an expected file rather than an orphan.
	DriftThreshold float64
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{DriftThreshold: defaultDriftThreshold}
}

func (p Policy) normalized() Policy {
	if p.DriftThreshold <= 0 || p.DriftThreshold > 1 {
		p.DriftThreshold = defaultDriftThreshold
	}
	return p
}

// IssueKind names a category of integrity issue.
type IssueKind int

const (
	IssueMissing IssueKind = iota + 1
	IssueOrphans
	IssueMismatchedLang
	IssueDuplicates
	IssueUnrepairable
)

func (k IssueKind) String() string {
	switch k {
	case IssueMissing:
		return "missing"
	case IssueOrphans:
		return "orphans"
	case IssueMismatchedLang:
		return "mismatchedLang"
	case IssueDuplicates:
		return "duplicates"
	case IssueUnrepairable:
		return "unrepairable"
	default:
		return fmt.Sprintf("issue(%d)", int(k))
	}
}

// IssueKinds lists every issue category.
func IssueKinds() []IssueKind {
	return []IssueKind{IssueMissing, IssueOrphans, IssueMismatchedLang, IssueDuplicates, IssueUnrepairable}
}

// ParseIssueKind accepts the names returned by String, case-insensitively.
func ParseIssueKind(value string) (IssueKind, error) {
	for _, kind := range IssueKinds() {
		if strings.EqualFold(kind.String(), strings.TrimSpace(value)) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown issue kind %q", value)
}

// RoomIntegrity is the comparison of one room against storage.
type RoomIntegrity struct {
	RoomID         string   `json:"roomId"`
	Expected       []string `json:"expected"`
	Found          []string `json:"found"`
	Missing        []string `json:"missing"`
	Orphans        []string `json:"orphans"`
	MismatchedLang []string `json:"mismatchedLang"`
	Duplicates     []string `json:"duplicates"`
	Unrepairable   []string `json:"unrepairable"`
	Score          int      `json:"score"`
}

// Issues returns the files listed under kind.
func (r RoomIntegrity) Issues(kind IssueKind) []string {
	switch kind {
	case IssueMissing:
		return r.Missing
	case IssueOrphans:
		return r.Orphans
	case IssueMismatchedLang:
		return r.MismatchedLang
	case IssueDuplicates:
		return r.Duplicates
	case IssueUnrepairable:
		return r.Unrepairable
	default:
		return nil
	}
}

// Healthy reports whether the room has a perfect score.
func (r RoomIntegrity) Healthy() bool {
	return r.Score == 100
}

// BuildRoomIntegrity classifies the storage files that carry the room prefix.
// Every such file lands in exactly one of found, duplicates, unrepairable,
// mismatchedLang, or orphans.
func BuildRoomIntegrity(roomID string, ids []room.Identity, storage []string, policy Policy) RoomIntegrity {
	policy = policy.normalized()
	rec := RoomIntegrity{
		RoomID:         roomID,
		Expected:       room.CanonicalSet(roomID, ids),
		Found:          []string{},
		Missing:        []string{},
		Orphans:        []string{},
		MismatchedLang: []string{},
		Duplicates:     []string{},
		Unrepairable:   []string{},
	}

	files := roomFiles(roomID, storage)
	claimed := make(map[string]string, len(rec.Expected))
	used := make(map[string]bool, len(files))
	expectedSet := make(map[string]struct{}, len(rec.Expected))
	for _, name := range rec.Expected {
		expectedSet[name] = struct{}{}
	}
	// Exact names claim first so a case variant never displaces them.
	for _, f := range files {
		if _, ok := expectedSet[f]; ok {
			claimed[f] = f
			used[f] = true
		}
	}
	for _, f := range files {
		lower := strings.ToLower(strings.TrimSpace(f))
		if used[f] {
			continue
		}
		if _, ok := expectedSet[lower]; ok {
			if _, taken := claimed[lower]; !taken {
				claimed[lower] = f
				used[f] = true
			}
		}
	}

	seenNorm := make(map[string]struct{}, len(files))
	for _, name := range rec.Expected {
		if observed, ok := claimed[name]; ok {
			rec.Found = append(rec.Found, observed)
			seenNorm[naming.NormalizeFilename(observed)] = struct{}{}
		} else {
			rec.Missing = append(rec.Missing, name)
		}
	}

	for _, f := range files {
		if used[f] {
			continue
		}
		norm := naming.NormalizeFilename(f)
		if _, dup := seenNorm[norm]; dup {
			rec.Duplicates = append(rec.Duplicates, f)
			continue
		}
		seenNorm[norm] = struct{}{}
		if _, ok := naming.ExtractLanguage(f); !ok {
			rec.Unrepairable = append(rec.Unrepairable, f)
			continue
		}
		if best, ok := textutil.BestMatch(norm, rec.Expected); ok && best.Score > policy.DriftThreshold {
			rec.MismatchedLang = append(rec.MismatchedLang, f)
			continue
		}
		rec.Orphans = append(rec.Orphans, f)
	}

	rec.Score = score(rec)
	return rec
}

// roomFiles returns the distinct storage names belonging to roomID, sorted.
func roomFiles(roomID string, storage []string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	for _, f := range storage {
		if !naming.HasRoomPrefix(f, roomID) {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// score is coverage (floored, so it reaches 100 only when everything is
// found) minus a capped penalty for unexpected files.
func score(r RoomIntegrity) int {
	coverage := 100
	if n := len(r.Expected); n > 0 {
		coverage = 100 * len(r.Found) / n
	}
	penalty := 2*(len(r.Orphans)+len(r.MismatchedLang)+len(r.Unrepairable)) + len(r.Duplicates)
	penalty = min(penalty, maxIssuePenalty)
	return min(max(coverage-penalty, 0), 100)
}

// Map holds integrity records keyed by room id.
type Map map[string]RoomIntegrity

// RoomIDs returns the keys in sorted order.
func (m Map) RoomIDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildMap builds a record per room. When room prefixes nest, such as
// "room-a" and "room-a-b", a file belongs to the room that expects it by
// name, otherwise to the room with the longest matching prefix.
func BuildMap(rooms []room.Room, storage []string, policy Policy) Map {
	out := make(Map, len(rooms))
	owners := newOwnership(rooms)
	owned := make(map[string][]string, len(rooms))
	for _, f := range storage {
		if owner, ok := owners.owner(f); ok {
			owned[owner] = append(owned[owner], f)
		}
	}
	for _, r := range rooms {
		out[r.ID] = BuildRoomIntegrity(r.ID, r.Identities(), owned[r.ID], policy)
	}
	return out
}

// OwnerRoom returns the id of the room filename belongs to. A room whose
// canonical names include filename wins; otherwise the room with the
// longest matching prefix does.
func OwnerRoom(filename string, rooms []room.Room) (string, bool) {
	return newOwnership(rooms).owner(filename)
}

type ownership struct {
	rooms    []room.Room
	expected []map[string]struct{}
}

func newOwnership(rooms []room.Room) ownership {
	o := ownership{rooms: rooms, expected: make([]map[string]struct{}, len(rooms))}
	for i, r := range rooms {
		names := room.CanonicalSet(r.ID, r.Identities())
		set := make(map[string]struct{}, len(names))
		for _, name := range names {
			set[name] = struct{}{}
		}
		o.expected[i] = set
	}
	return o
}

func (o ownership) owner(filename string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(filename))
	best, bestLen := "", -1
	named, namedLen := "", -1
	for i, r := range o.rooms {
		prefix := naming.RoomPrefix(r.ID)
		if prefix == "-" || !naming.HasRoomPrefix(filename, r.ID) {
			continue
		}
		if len(prefix) > bestLen {
			best, bestLen = r.ID, len(prefix)
		}
		if _, ok := o.expected[i][lower]; ok && len(prefix) > namedLen {
			named, namedLen = r.ID, len(prefix)
		}
	}
	if namedLen >= 0 {
		return named, true
	}
	return best, bestLen >= 0
}

// Summary aggregates a Map.
type Summary struct {
	TotalRooms        int `json:"totalRooms"`
	HealthyRooms      int `json:"healthyRooms"`
	RoomsWithIssues   int `json:"roomsWithIssues"`
	TotalExpected     int `json:"totalExpected"`
	TotalFound        int `json:"totalFound"`
	TotalMissing      int `json:"totalMissing"`
	TotalOrphans      int `json:"totalOrphans"`
	TotalDuplicates   int `json:"totalDuplicates"`
	TotalUnrepairable int `json:"totalUnrepairable"`
	AverageScore      int `json:"averageScore"`
}

// Summarize totals the map. An empty map averages to 100.
func Summarize(m Map) Summary {
	var s Summary
	totalScore := 0
	for _, r := range m {
		s.TotalRooms++
		s.TotalExpected += len(r.Expected)
		s.TotalFound += len(r.Found)
		s.TotalMissing += len(r.Missing)
		s.TotalOrphans += len(r.Orphans)
		s.TotalDuplicates += len(r.Duplicates)
		s.TotalUnrepairable += len(r.Unrepairable)
		totalScore += r.Score
		if r.Healthy() {
			s.HealthyRooms++
		}
	}
	s.RoomsWithIssues = s.TotalRooms - s.HealthyRooms
	s.AverageScore = 100
	if s.TotalRooms > 0 {
		// round half up on non-negative integers
		s.AverageScore = (2*totalScore + s.TotalRooms) / (2 * s.TotalRooms)
	}
	return s
}

// LowestRooms returns up to n records ordered by ascending score, breaking
// ties by room id.
func LowestRooms(m Map, n int) []RoomIntegrity {
	all := make([]RoomIntegrity, 0, len(m))
	for _, r := range m {
		all = append(all, r)
	}
	slices.SortFunc(all, func(a, b RoomIntegrity) int {
		if a.Score != b.Score {
			return a.Score - b.Score
		}
		return strings.Compare(a.RoomID, b.RoomID)
	})
	if n < 0 {
		n = 0
	}
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// RoomsWithIssues returns records with a non-empty list of kind, sorted by
// room id.
func RoomsWithIssues(m Map, kind IssueKind) []RoomIntegrity {
	var out []RoomIntegrity
	for _, id := range m.RoomIDs() {
		if r := m[id]; len(r.Issues(kind)) > 0 {
			out = append(out, r)
		}
	}
	return out
}
