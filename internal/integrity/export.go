package integrity

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

type exportDoc struct {
	Summary Summary `json:"summary"`
	Rooms   Map     `json:"rooms"`
}

// WriteJSON writes the summary and every room record as indented JSON.
func WriteJSON(w io.Writer, m Map) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportDoc{Summary: Summarize(m), Rooms: m})
}

var csvHeader = []string{
	"roomId", "score", "expectedCount", "foundCount", "missingCount", "orphanCount",
	"mismatchedCount", "duplicateCount", "unrepairableCount", "missingFiles", "orphanFiles",
}

// WriteCSV writes one row per room, sorted by room id.
func WriteCSV(w io.Writer, m Map) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, id := range m.RoomIDs() {
		r := m[id]
		row := []string{
			r.RoomID,
			strconv.Itoa(r.Score),
			strconv.Itoa(len(r.Expected)),
			strconv.Itoa(len(r.Found)),
			strconv.Itoa(len(r.Missing)),
			strconv.Itoa(len(r.Orphans)),
			strconv.Itoa(len(r.MismatchedLang)),
			strconv.Itoa(len(r.Duplicates)),
			strconv.Itoa(len(r.Unrepairable)),
			strings.Join(r.Missing, ";"),
			strings.Join(r.Orphans, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
