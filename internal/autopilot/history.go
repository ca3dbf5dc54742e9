package autopilot

import (
	"encoding/json"
	"time"
)

// DefaultHistoryCapacity is the number of cycles a status keeps.
const DefaultHistoryCapacity = 20

// HistoryRecord summarizes one finished cycle.
type HistoryRecord struct {
	CycleID        string    `json:"cycleId"`
	RunAt          time.Time `json:"runAt"`
	Mode           Mode      `json:"mode"`
	Outcome        Outcome   `json:"outcome"`
	BeforeScore    int       `json:"beforeScore"`
	AfterScore     int       `json:"afterScore"`
	RoomsTouched   int       `json:"roomsTouched"`
	ChangesApplied int       `json:"changesApplied"`
	ChangesBlocked int       `json:"changesBlocked"`
	Flags          []string  `json:"flags"`
}

// History is a fixed-capacity ring of cycle records. The oldest record is
// dropped first. Append returns a new value and leaves the receiver intact.
type History struct {
	capacity int
	records  []HistoryRecord
}

// NewHistory builds a history holding the newest capacity records of
// records, which are given oldest first.
func NewHistory(capacity int, records ...HistoryRecord) History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	h := History{capacity: capacity}
	for _, r := range records {
		h = h.Append(r)
	}
	return h
}

// Append adds record, evicting the oldest entry when full.
func (h History) Append(record HistoryRecord) History {
	capacity := h.Capacity()
	next := make([]HistoryRecord, 0, min(len(h.records)+1, capacity))
	start := max(len(h.records)+1-capacity, 0)
	next = append(next, h.records[start:]...)
	next = append(next, record)
	return History{capacity: capacity, records: next}
}

// Records returns a copy of the records, oldest first.
func (h History) Records() []HistoryRecord {
	out := make([]HistoryRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Len returns the number of records held.
func (h History) Len() int {
	return len(h.records)
}

// Capacity returns the maximum number of records held.
func (h History) Capacity() int {
	if h.capacity <= 0 {
		return DefaultHistoryCapacity
	}
	return h.capacity
}

// Latest returns the newest record.
func (h History) Latest() (HistoryRecord, bool) {
	if len(h.records) == 0 {
		return HistoryRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

func (h History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Records())
}
