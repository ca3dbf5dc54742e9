package autopilot

import (
	"audiopilot/internal/governance"
	"audiopilot/internal/repair"
)

// Category is the changeset bucket a decision lands in.
type Category int

const (
	CategoryBlocked Category = iota
	CategoryCosmetic
	CategoryCriticalFix
	CategoryAutoFix
	CategoryLowConfidence
)

func (c Category) String() string {
	switch c {
	case CategoryBlocked:
		return "blocked"
	case CategoryCosmetic:
		return "cosmetic"
	case CategoryCriticalFix:
		return "critical fixes"
	case CategoryAutoFix:
		return "auto fixes"
	case CategoryLowConfidence:
		return "low confidence"
	default:
		return "unknown"
	}
}

// Categorize assigns a decision to its bucket; the first matching rule
// wins.
func Categorize(d governance.Decision) Category {
	switch {
	case d.Decision == governance.Blocked:
		return CategoryBlocked
	case d.Operation.IsCosmetic():
		return CategoryCosmetic
	case d.Operation.Priority == repair.PriorityCritical:
		return CategoryCriticalFix
	case d.Decision.Approved():
		return CategoryAutoFix
	default:
		return CategoryLowConfidence
	}
}

// Changeset partitions every decision of a cycle into five disjoint
// buckets.
type Changeset struct {
	CycleID       string                `json:"cycleId,omitempty"`
	Mode          Mode                  `json:"mode"`
	CriticalFixes []governance.Decision `json:"criticalFixes"`
	AutoFixes     []governance.Decision `json:"autoFixes"`
	LowConfidence []governance.Decision `json:"lowConfidence"`
	Blocked       []governance.Decision `json:"blocked"`
	Cosmetic      []governance.Decision `json:"cosmetic"`
}

// NewChangeset categorizes decisions, preserving their order within each
// bucket.
func NewChangeset(mode Mode, decisions []governance.Decision) Changeset {
	cs := Changeset{
		Mode:          mode,
		CriticalFixes: []governance.Decision{},
		AutoFixes:     []governance.Decision{},
		LowConfidence: []governance.Decision{},
		Blocked:       []governance.Decision{},
		Cosmetic:      []governance.Decision{},
	}
	for _, d := range decisions {
		switch Categorize(d) {
		case CategoryBlocked:
			cs.Blocked = append(cs.Blocked, d)
		case CategoryCosmetic:
			cs.Cosmetic = append(cs.Cosmetic, d)
		case CategoryCriticalFix:
			cs.CriticalFixes = append(cs.CriticalFixes, d)
		case CategoryAutoFix:
			cs.AutoFixes = append(cs.AutoFixes, d)
		default:
			cs.LowConfidence = append(cs.LowConfidence, d)
		}
	}
	return cs
}

// Bucket returns the decisions of one category.
func (c Changeset) Bucket(cat Category) []governance.Decision {
	switch cat {
	case CategoryBlocked:
		return c.Blocked
	case CategoryCosmetic:
		return c.Cosmetic
	case CategoryCriticalFix:
		return c.CriticalFixes
	case CategoryAutoFix:
		return c.AutoFixes
	default:
		return c.LowConfidence
	}
}

// Categories lists the buckets in report order.
func Categories() []Category {
	return []Category{CategoryCriticalFix, CategoryAutoFix, CategoryLowConfidence, CategoryBlocked, CategoryCosmetic}
}

// Len returns the number of decisions across all buckets.
func (c Changeset) Len() int {
	return len(c.CriticalFixes) + len(c.AutoFixes) + len(c.LowConfidence) + len(c.Blocked) + len(c.Cosmetic)
}
