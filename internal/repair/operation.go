package repair

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"slices"
	"strings"

	"audiopilot/internal/naming"
)

// OperationType enumerates every proposed mutation.
type OperationType int

const (
	OpRename OperationType = iota + 1
	OpUpdateJSON
	OpUpdateManifest
	OpDeleteOrphan
	OpMoveDuplicate
	OpCreateReference
	OpAttachOrphan
	OpGenerateTTS
	OpFixJSONRef
)

var operationNames = map[OperationType]string{
	OpRename:          "rename",
	OpUpdateJSON:      "update-json",
	OpUpdateManifest:  "update-manifest",
	OpDeleteOrphan:    "delete-orphan",
	OpMoveDuplicate:   "move-duplicate",
	OpCreateReference: "create-reference",
	OpAttachOrphan:    "attach-orphan",
	OpGenerateTTS:     "generate-tts",
	OpFixJSONRef:      "fix-json-ref",
}

func (t OperationType) String() string {
	if name, ok := operationNames[t]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", int(t))
}

func (t OperationType) MarshalText() ([]byte, error) {
	if _, ok := operationNames[t]; !ok {
		return nil, fmt.Errorf("unknown operation type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *OperationType) UnmarshalText(text []byte) error {
	for op, name := range operationNames {
		if name == string(text) {
			*t = op
			return nil
		}
	}
	return fmt.Errorf("unknown operation type %q", text)
}

// MovesFile reports whether the operation relocates an existing storage
// object from Source to Target.
func (t OperationType) MovesFile() bool {
	switch t {
	case OpRename, OpAttachOrphan, OpMoveDuplicate, OpDeleteOrphan:
		return true
	default:
		return false
	}
}

// CreatesFile reports whether the operation produces a new storage object.
func (t OperationType) CreatesFile() bool {
	switch t {
	case OpGenerateTTS, OpCreateReference:
		return true
	default:
		return false
	}
}

// Destructive reports whether the operation removes content from the live
// library.
func (t OperationType) Destructive() bool {
	return t == OpDeleteOrphan
}

// Priority orders operations inside a room.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityLow:      "low",
	PriorityNormal:   "normal",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	for prio, name := range priorityNames {
		if name == string(text) {
			*p = prio
			return nil
		}
	}
	return fmt.Errorf("unknown priority %q", text)
}

// Quarantine folders for files removed from the live namespace.
const (
	OrphanDir    = "_orphans"
	DuplicateDir = "_duplicates"
)

// Operation is one proposed change.
type Operation struct {
	ID         string          `json:"id"`
	Type       OperationType   `json:"type"`
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	RoomID     string          `json:"roomId,omitempty"`
	EntrySlug  string          `json:"entrySlug,omitempty"`
	Language   naming.Language `json:"language,omitempty"`
	Confidence int             `json:"confidence"`
	Reason     string          `json:"reason"`
	Priority   Priority        `json:"priority"`
}

// New builds an operation and assigns its content id.
func New(t OperationType, roomID, source, target string, lang naming.Language, confidence int, priority Priority, reason string) Operation {
	op := Operation{
		Type:       t,
		Source:     source,
		Target:     target,
		RoomID:     roomID,
		Language:   lang,
		Confidence: min(max(confidence, 0), 100),
		Reason:     reason,
		Priority:   priority,
	}
	op.ID = op.computeID()
	return op
}

// WithEntry records the entry slug the operation concerns.
func (op Operation) WithEntry(slug string) Operation {
	op.EntrySlug = slug
	return op
}

func (op Operation) computeID() string {
	h := sha256.New()
	for _, part := range []string{op.Type.String(), op.RoomID, op.Source, op.Target, string(op.Language)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "op-" + hex.EncodeToString(h.Sum(nil))[:16]
}

// ContentHash identifies the audio the operation writes: the file it moves,
// or the generated track for its target and language. It is empty for
// operations that write no audio.
func (op Operation) ContentHash() string {
	var parts []string
	switch {
	case op.Type.MovesFile() && op.Source != "":
		parts = []string{"file", strings.ToLower(path.Base(op.Source))}
	case op.Type == OpGenerateTTS:
		parts = []string{"tts", string(op.Language), strings.ToLower(op.TargetName())}
	default:
		return ""
	}
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}

// IsCosmetic reports whether the operation only changes presentation: a
// case-only rename or a manifest refresh.
func (op Operation) IsCosmetic() bool {
	switch op.Type {
	case OpUpdateManifest:
		return true
	case OpRename:
		return op.Source != op.Target && strings.EqualFold(op.Source, op.Target)
	default:
		return false
	}
}

// TargetName returns the target file name with any quarantine folder
// stripped.
func (op Operation) TargetName() string {
	return path.Base(op.Target)
}

// Sort orders operations by room, descending priority, type, source, and
// target.
func Sort(ops []Operation) {
	slices.SortStableFunc(ops, func(a, b Operation) int {
		if c := strings.Compare(a.RoomID, b.RoomID); c != 0 {
			return c
		}
		if a.Priority != b.Priority {
			return int(b.Priority) - int(a.Priority)
		}
		if a.Type != b.Type {
			return int(a.Type) - int(b.Type)
		}
		if c := strings.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return strings.Compare(a.Target, b.Target)
	})
}
