package room

import (
	"strconv"
	"strings"

	"audiopilot/internal/naming"
)

// IdentityKind records which entry field supplied the identity.
type IdentityKind int

const (
	BySlug IdentityKind = iota + 1
	ByID
	ByIndex
)

func (k IdentityKind) String() string {
	switch k {
	case BySlug:
		return "slug"
	case ByID:
		return "id"
	case ByIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Identity is the resolved naming identity of an entry.
type Identity struct {
	Kind IdentityKind
	// Text is the authored slug or string id.
	Text string
	// Number is the numeric id or the index for ByIndex identities.
	Number int
	// Position is the zero-based position of the entry in its room.
	Position int
	// ExplicitIndex is the authored index field, when present.
	ExplicitIndex *int
	// Audio is the reference currently stored on the entry.
	Audio *AudioRef

	numericID bool
}

// Resolve derives identities for entries in order. Slugs and ids that
// normalize to nothing fall through to the next source; the final fallback
// is the entry position, so resolution never fails.
func Resolve(entries []Entry) []Identity {
	out := make([]Identity, 0, len(entries))
	for pos, entry := range entries {
		out = append(out, resolveOne(entry, pos))
	}
	return out
}

func resolveOne(entry Entry, pos int) Identity {
	id := Identity{Position: pos, ExplicitIndex: entry.Index, Audio: entry.Audio}
	if entry.Slug != nil && naming.NormalizeEntrySlug(*entry.Slug) != "" {
		id.Kind = BySlug
		id.Text = strings.TrimSpace(*entry.Slug)
		return id
	}
	if entry.ID != nil {
		if n, ok := entry.ID.Number(); ok {
			id.Kind = ByID
			id.Number = n
			id.Text = strconv.Itoa(n)
			id.numericID = true
			return id
		}
		if naming.NormalizeEntrySlug(entry.ID.String()) != "" {
			id.Kind = ByID
			id.Text = strings.TrimSpace(entry.ID.String())
			return id
		}
	}
	id.Kind = ByIndex
	id.Number = pos
	if entry.Index != nil {
		id.Number = *entry.Index
	}
	return id
}

// Token returns the normalized entry slug used in canonical names.
func (id Identity) Token() string {
	switch id.Kind {
	case BySlug:
		return naming.NormalizeEntrySlug(id.Text)
	case ByID:
		if id.numericID {
			return naming.NormalizeIndex(id.Number)
		}
		return naming.NormalizeEntrySlug(id.Text)
	case ByIndex:
		return naming.NormalizeIndex(id.Number)
	default:
		return naming.NormalizeIndex(id.Position)
	}
}

// Label is the authored identity as shown in reports.
func (id Identity) Label() string {
	switch id.Kind {
	case BySlug, ByID:
		return id.Text
	default:
		return strconv.Itoa(id.Number)
	}
}

// NumericValue returns the value of a slug or id that is written as a plain
// integer, such as slug "2" or id 2.
func (id Identity) NumericValue() (int, bool) {
	switch id.Kind {
	case BySlug, ByID:
		if id.numericID {
			return id.Number, true
		}
		text := strings.TrimSpace(id.Text)
		if !naming.IsNumeric(text) {
			return 0, false
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Pair returns the canonical filenames of the identity in roomID.
func (id Identity) Pair(roomID string) naming.Pair {
	return naming.CanonicalPair(roomID, id.Token())
}

// CanonicalSet returns the canonical filenames for every identity, EN before
// VI, in entry order. Identities that collide on the same name contribute it
// once.
func CanonicalSet(roomID string, ids []Identity) []string {
	seen := make(map[string]struct{}, len(ids)*2)
	out := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		pair := id.Pair(roomID)
		for _, lang := range naming.Languages() {
			name := pair.For(lang)
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Identities resolves the room entries.
func (r Room) Identities() []Identity {
	return Resolve(r.Entries)
}

// StrPtr and IntPtr build optional entry fields.
func StrPtr(s string) *string { return &s }

func IntPtr(n int) *int { return &n }
