package ledger

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultRegenerationThreshold is the confidence below which an entry is a
// regeneration candidate.
const DefaultRegenerationThreshold = 70

// Source records how a file came to exist.
type Source int

const (
	SourceTTS Source = iota + 1
	SourceManual
	SourceRepaired
)

func (s Source) String() string {
	switch s {
	case SourceTTS:
		return "tts"
	case SourceManual:
		return "manual"
	case SourceRepaired:
		return "repaired"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

func (s Source) MarshalText() ([]byte, error) {
	switch s {
	case SourceTTS, SourceManual, SourceRepaired:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown ledger source %d", int(s))
	}
}

func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSource converts a stored source name.
func ParseSource(value string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "tts":
		return SourceTTS, nil
	case "manual":
		return SourceManual, nil
	case "repaired":
		return SourceRepaired, nil
	default:
		return 0, fmt.Errorf("unknown ledger source %q", value)
	}
}

// Entry is the lifecycle record of one canonical filename.
type Entry struct {
	Filename        string     `json:"filename"`
	RoomID          string     `json:"roomId"`
	Source          Source     `json:"source"`
	GeneratedAt     time.Time  `json:"generatedAt"`
	LastVerified    *time.Time `json:"lastVerified,omitempty"`
	LastFixed       *time.Time `json:"lastFixed,omitempty"`
	LastRegenerated *time.Time `json:"lastRegenerated,omitempty"`
	ConfidenceScore int        `json:"confidenceScore"`
	// Hash identifies the content last written to the file.
	Hash string `json:"hash,omitempty"`
	// OperationID is the repair operation that last wrote the file.
	OperationID string `json:"operationId,omitempty"`
}

// LastModified returns the latest generation, fix, or regeneration time.
func (e Entry) LastModified() time.Time {
	latest := e.GeneratedAt
	for _, ts := range []*time.Time{e.LastFixed, e.LastRegenerated} {
		if ts != nil && ts.After(latest) {
			latest = *ts
		}
	}
	return latest
}

// VerifiedSinceChange reports whether the entry was verified after its last
// modification.
func (e Entry) VerifiedSinceChange() bool {
	return e.LastVerified != nil && !e.LastVerified.Before(e.LastModified())
}

// Ledger maps canonical filenames to entries.
type Ledger struct {
	entries map[string]Entry
	now     func() time.Time
}

// New builds a ledger. A nil clock uses time.Now.
func New(now func() time.Time, entries ...Entry) Ledger {
	if now == nil {
		now = time.Now
	}
	l := Ledger{entries: make(map[string]Entry, len(entries)), now: now}
	for _, e := range entries {
		e.Filename = key(e.Filename)
		if e.Filename == "" {
			continue
		}
		l.entries[e.Filename] = e
	}
	return l
}

func key(filename string) string {
	return strings.ToLower(strings.TrimSpace(filename))
}

func (l Ledger) clock() time.Time {
	if l.now == nil {
		return time.Now().UTC()
	}
	return l.now().UTC()
}

func (l Ledger) with(e Entry) Ledger {
	next := Ledger{entries: maps.Clone(l.entries), now: l.now}
	if next.entries == nil {
		next.entries = make(map[string]Entry, 1)
	}
	next.entries[e.Filename] = e
	return next
}

// Len returns the number of entries.
func (l Ledger) Len() int {
	return len(l.entries)
}

// Get looks up filename case-insensitively.
func (l Ledger) Get(filename string) (Entry, bool) {
	e, ok := l.entries[key(filename)]
	return e, ok
}

// Upsert stores e, stamping GeneratedAt when it is unset.
func (l Ledger) Upsert(e Entry) Ledger {
	e.Filename = key(e.Filename)
	if e.Filename == "" {
		return l
	}
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = l.clock()
	}
	e.ConfidenceScore = min(max(e.ConfidenceScore, 0), 100)
	return l.with(e)
}

// MarkVerified records that filename was observed in storage. Unknown files
// are registered as manual content.
func (l Ledger) MarkVerified(filename, roomID string) Ledger {
	now := l.clock()
	e, ok := l.Get(filename)
	if !ok {
		e = Entry{Filename: key(filename), RoomID: roomID, Source: SourceManual, GeneratedAt: now, ConfidenceScore: 100}
	}
	e.LastVerified = &now
	return l.with(e)
}

// MarkFixed records a repair that wrote filename.
func (l Ledger) MarkFixed(filename, roomID string, confidence int, operationID, hash string) Ledger {
	now := l.clock()
	e, ok := l.Get(filename)
	if !ok {
		e = Entry{Filename: key(filename), RoomID: roomID, GeneratedAt: now}
	}
	e.Source = SourceRepaired
	e.LastFixed = &now
	e.ConfidenceScore = min(max(confidence, 0), 100)
	e.OperationID = operationID
	e.Hash = hash
	return l.with(e)
}

// MarkRegenerated records a generation request for filename.
func (l Ledger) MarkRegenerated(filename, roomID string, confidence int, operationID, hash string) Ledger {
	now := l.clock()
	e, ok := l.Get(filename)
	if !ok {
		e = Entry{Filename: key(filename), RoomID: roomID, GeneratedAt: now}
	}
	e.Source = SourceTTS
	e.LastRegenerated = &now
	e.ConfidenceScore = min(max(confidence, 0), 100)
	e.OperationID = operationID
	e.Hash = hash
	return l.with(e)
}

// Remove drops filename.
func (l Ledger) Remove(filename string) Ledger {
	if _, ok := l.Get(filename); !ok {
		return l
	}
	next := Ledger{entries: maps.Clone(l.entries), now: l.now}
	delete(next.entries, key(filename))
	return next
}

// Entries returns every entry sorted by filename.
func (l Ledger) Entries() []Entry {
	return sortedEntries(l.entries, func(Entry) bool { return true })
}

// ForRoom returns the entries recorded for roomID.
func (l Ledger) ForRoom(roomID string) []Entry {
	return sortedEntries(l.entries, func(e Entry) bool { return e.RoomID == roomID })
}

// NeedingRegeneration returns entries whose confidence is below threshold.
// A non-positive threshold uses DefaultRegenerationThreshold.
func (l Ledger) NeedingRegeneration(threshold int) []Entry {
	if threshold <= 0 {
		threshold = DefaultRegenerationThreshold
	}
	return sortedEntries(l.entries, func(e Entry) bool { return e.ConfidenceScore < threshold })
}

// RecentlyModified returns entries modified at or after since.
func (l Ledger) RecentlyModified(since time.Time) []Entry {
	return sortedEntries(l.entries, func(e Entry) bool { return !e.LastModified().Before(since) })
}

func sortedEntries(entries map[string]Entry, keep func(Entry) bool) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Filename, b.Filename) })
	return out
}

// Stats summarizes the ledger.
type Stats struct {
	Total             int            `json:"total"`
	BySource          map[string]int `json:"bySource"`
	AvgConfidence     float64        `json:"avgConfidence"`
	NeedsRegeneration int            `json:"needsRegeneration"`
}

// Stats computes totals with the given regeneration threshold.
func (l Ledger) Stats(threshold int) Stats {
	if threshold <= 0 {
		threshold = DefaultRegenerationThreshold
	}
	s := Stats{BySource: map[string]int{}}
	sum := 0
	for _, e := range l.entries {
		s.Total++
		s.BySource[e.Source.String()]++
		sum += e.ConfidenceScore
		if e.ConfidenceScore < threshold {
			s.NeedsRegeneration++
		}
	}
	if s.Total > 0 {
		s.AvgConfidence = float64(sum) / float64(s.Total)
	}
	return s
}
