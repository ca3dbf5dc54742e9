package governance

import (
	"fmt"

	"audiopilot/internal/repair"
)

// Tier is the outcome of governance for one operation.
type Tier int

const (
	AutoApprove Tier = iota + 1
	GovernanceApprove
	RequiresReview
	Blocked
)

var tierNames = map[Tier]string{
	AutoApprove:       "auto-approve",
	GovernanceApprove: "governance-approve",
	RequiresReview:    "requires-review",
	Blocked:           "blocked",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

func (t Tier) MarshalText() ([]byte, error) {
	if _, ok := tierNames[t]; !ok {
		return nil, fmt.Errorf("unknown decision tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	for tier, name := range tierNames {
		if name == string(text) {
			*t = tier
			return nil
		}
	}
	return fmt.Errorf("unknown decision tier %q", text)
}

// Approved reports whether the tier allows unattended application.
func (t Tier) Approved() bool {
	return t == AutoApprove || t == GovernanceApprove
}

// demote moves one step toward review. Review and blocked are terminal.
func (t Tier) demote() Tier {
	switch t {
	case AutoApprove:
		return GovernanceApprove
	case GovernanceApprove:
		return RequiresReview
	default:
		return t
	}
}

// atMost returns the stricter of t and ceiling.
func (t Tier) atMost(ceiling Tier) Tier {
	return max(t, ceiling)
}

// Rule names recorded on decisions.
const (
	RuleConfidence          = "confidence"
	RuleCrossRoomPollution  = "cross-room-pollution"
	RuleDestructiveCap      = "destructive-cap"
	RuleLedgerRegression    = "ledger-regression"
	RuleRedundantRepair     = "redundant-repair"
	RuleParity              = "en-vi-parity"
	RuleIntegrityThreshold  = "integrity-threshold"
	RuleMultiPassValidation = "multi-pass-verification"
	// RuleForeignReferenceRepoint notes an allowed reference fix that moves
	// an entry off another room's file onto its own room's name.
	RuleForeignReferenceRepoint = "foreign-reference-repoint"
)

// Global flags reported on an Evaluation.
const (
	FlagIntegrityThresholdNotMet = "integrity-threshold-not-met"
	FlagCrossRoomPollution       = "cross-room-pollution"
	FlagParityBrokenPrefix       = "parity-broken:"
	FlagMultiPassDemoted         = "multi-pass-demoted"
)

// Decision is the governance verdict on one operation.
type Decision struct {
	Operation repair.Operation `json:"operation"`
	Decision  Tier             `json:"decision"`
	Rules     []string         `json:"rules"`
	Reason    string           `json:"reason"`
}

func (d *Decision) restrict(tier Tier, rule, reason string) {
	if tier <= d.Decision {
		return
	}
	d.Decision = tier
	d.Rules = append(d.Rules, rule)
	d.Reason = reason
}

func (d *Decision) demote(rule, reason string) {
	d.restrict(d.Decision.demote(), rule, reason)
}
