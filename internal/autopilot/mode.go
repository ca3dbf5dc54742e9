package autopilot

import (
	"fmt"
	"strings"
)

// Mode selects whether approved operations are recorded as applied.
type Mode int

const (
	ModeDryRun Mode = iota
	ModeApply
)

func (m Mode) String() string {
	switch m {
	case ModeDryRun:
		return "dry-run"
	case ModeApply:
		return "apply"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode converts "dry-run" or "apply" into a Mode.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dry-run", "dryrun", "":
		return ModeDryRun, nil
	case "apply":
		return ModeApply, nil
	default:
		return ModeDryRun, fmt.Errorf("unknown mode %q", value)
	}
}

// Outcome summarizes how a cycle ended.
type Outcome int

const (
	// OutcomeHealthy means nothing needed fixing.
	OutcomeHealthy Outcome = iota
	// OutcomeRepaired means every proposed operation was approved.
	OutcomeRepaired
	// OutcomeNeedsReview means at least one operation or room needs a human.
	OutcomeNeedsReview
	// OutcomeNoRooms means the snapshot had no rooms in scope.
	OutcomeNoRooms
)

var outcomeNames = map[Outcome]string{
	OutcomeHealthy:     "healthy",
	OutcomeRepaired:    "repaired",
	OutcomeNeedsReview: "needs-review",
	OutcomeNoRooms:     "no-rooms",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	if _, ok := outcomeNames[o]; !ok {
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for outcome, name := range outcomeNames {
		if name == string(text) {
			*o = outcome
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", string(text))
}

// Stage names, in execution order.
const (
	StageScan             = "scan"
	StageBuildRepairPlan  = "build-repair-plan"
	StageFillMissing      = "fill-missing"
	StageSemanticAttach   = "semantic-attach"
	StageRebuildIntegrity = "rebuild-integrity"
	StageGovernance       = "governance"
	StageReport           = "report"
)

// Stages lists every stage in execution order.
func Stages() []string {
	return []string{
		StageScan,
		StageBuildRepairPlan,
		StageFillMissing,
		StageSemanticAttach,
		StageRebuildIntegrity,
		StageGovernance,
		StageReport,
	}
}
