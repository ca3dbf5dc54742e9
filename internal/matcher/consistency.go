package matcher

import (
	"audiopilot/internal/naming"
	"audiopilot/internal/room"
)

const consistencyFloor = 80

// EntryFiles lists the files claimed by one entry.
type EntryFiles struct {
	Index int    `json:"entryIndex"`
	EN    string `json:"enFile,omitempty"`
	VI    string `json:"viFile,omitempty"`
}

// Consistency is the per-entry view of a room's audio.
type Consistency struct {
	Entries        []EntryFiles `json:"matched"`
	Unmatched      []string     `json:"unmatched"`
	MissingEntries []int        `json:"missingEntries"`
}

// RoomConsistency assigns each file to at most one entry language slot.
// Files are claimed in input order by the entry they match with at least
// 80 confidence.
func (m *Matcher) RoomConsistency(roomID string, ids []room.Identity, files []string) Consistency {
	matches := make([]Match, len(files))
	for i, file := range files {
		matches[i] = m.Match(file, roomID, ids)
	}
	used := make([]bool, len(files))
	claim := func(pos int, lang naming.Language) string {
		for i, match := range matches {
			if used[i] || !match.Matched() || match.Language != lang {
				continue
			}
			if match.MatchedEntry.Index != pos || match.Confidence < consistencyFloor {
				continue
			}
			used[i] = true
			return match.Filename
		}
		return ""
	}

	out := Consistency{Entries: []EntryFiles{}, Unmatched: []string{}, MissingEntries: []int{}}
	for _, id := range ids {
		entry := EntryFiles{Index: id.Position, EN: claim(id.Position, naming.LangEN), VI: claim(id.Position, naming.LangVI)}
		out.Entries = append(out.Entries, entry)
		if entry.EN == "" || entry.VI == "" {
			out.MissingEntries = append(out.MissingEntries, id.Position)
		}
	}
	for i, file := range files {
		if !used[i] {
			out.Unmatched = append(out.Unmatched, file)
		}
	}
	return out
}
