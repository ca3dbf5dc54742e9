package governance

import (
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"audiopilot/internal/integrity"
	"audiopilot/internal/ledger"
	"audiopilot/internal/logging"
	"audiopilot/internal/naming"
	"audiopilot/internal/repair"
	"audiopilot/internal/room"
)

// Context is the state an evaluation is judged against.
type Context struct {
	// Summary is what the integrity gate judges when Score is nil.
	Summary integrity.Summary
	// Score summarizes a projected storage listing. When set, the gate
	// judges the listing left by the operations that passed every other
	// rule, so work sent to review or blocked never lifts the library
	// over the threshold.
	Score   func(projected []string) integrity.Summary
	Ledger  ledger.Ledger
	Rooms   []room.Room
	Storage []string
}

// Evaluation is the result of judging a change set.
type Evaluation struct {
	Decisions []Decision `json:"decisions"`
	Flags     []string   `json:"flags"`
	// Projected is the storage listing after every approved operation.
	Projected []string `json:"-"`
}

// Engine produces governance decisions.
type Engine struct {
	policy Policy
	logger *slog.Logger
}

// New builds an Engine. A nil logger discards decision logs.
func New(policy Policy, logger *slog.Logger) *Engine {
	return &Engine{
		policy: policy.normalized(),
		logger: logging.NewComponentLogger(logger, "governance"),
	}
}

// Policy returns the effective floors.
func (e *Engine) Policy() Policy {
	return e.policy
}

// EvaluateOperation judges op on its own: confidence, room isolation,
// destructiveness, and ledger history.
func (e *Engine) EvaluateOperation(op repair.Operation, ctx Context) Decision {
	d := Decision{Operation: op, Decision: e.gate(op.Confidence), Rules: []string{RuleConfidence}}
	d.Reason = fmt.Sprintf("confidence %d%%", op.Confidence)

	if polluting, reason := crossRoom(op, ctx.Rooms); polluting {
		d.restrict(Blocked, RuleCrossRoomPollution, reason)
		e.logDecision(d)
		return d
	}
	if owner, foreign := foreignReference(op, ctx.Rooms); foreign {
		d.Rules = append(d.Rules, RuleForeignReferenceRepoint)
		d.Reason = fmt.Sprintf("%s; reference repointed from room %q to room %q", d.Reason, owner, op.RoomID)
	}
	if op.Type.Destructive() && d.Decision < GovernanceApprove {
		d.restrict(GovernanceApprove, RuleDestructiveCap, "destructive operations need governance approval")
	}
	checkLedger(&d, ctx.Ledger)
	e.logDecision(d)
	return d
}

func (e *Engine) gate(confidence int) Tier {
	switch {
	case confidence >= percent(e.policy.AutoApprove):
		return AutoApprove
	case confidence >= percent(e.policy.GovernanceApprove):
		return GovernanceApprove
	default:
		return RequiresReview
	}
}

// crossRoom reports whether op would place content in a room other than
// the one it works for. A file move works for the room its source belongs
// to. Every other operation works for op.RoomID, whose entry or storage it
// changes, and its target must stay in that room. Manifest refreshes name
// a room rather than a file and are not checked.
func crossRoom(op repair.Operation, rooms []room.Room) (bool, string) {
	if op.Type == repair.OpUpdateManifest {
		return false, ""
	}
	home := op.RoomID
	if op.Type.MovesFile() && strings.TrimSpace(op.Source) != "" {
		if owner, ok := integrity.OwnerRoom(path.Base(op.Source), rooms); ok {
			home = owner
		}
	}
	target := op.TargetName()
	targetRoom, ok := integrity.OwnerRoom(target, rooms)
	if !ok {
		if !naming.HasRoomPrefix(target, home) {
			return true, fmt.Sprintf("target %q is outside room %q", target, home)
		}
		targetRoom = home
	}
	if !sameRoom(targetRoom, home) {
		return true, fmt.Sprintf("target %q belongs to room %q, operation works for %q", target, targetRoom, home)
	}
	return false, ""
}

// foreignReference reports whether a reference operation repoints an entry
// away from a file owned by another known room.
func foreignReference(op repair.Operation, rooms []room.Room) (string, bool) {
	if op.Type.MovesFile() || op.Type.CreatesFile() || strings.TrimSpace(op.Source) == "" {
		return "", false
	}
	owner, ok := integrity.OwnerRoom(path.Base(op.Source), rooms)
	if !ok || sameRoom(owner, op.RoomID) {
		return "", false
	}
	return owner, true
}

func sameRoom(a, b string) bool {
	return naming.NormalizeRoomID(a) == naming.NormalizeRoomID(b)
}

func checkLedger(d *Decision, l ledger.Ledger) {
	op := d.Operation
	switch op.Type {
	case repair.OpRename, repair.OpAttachOrphan, repair.OpGenerateTTS:
	default:
		return
	}
	entry, ok := l.Get(op.TargetName())
	if !ok {
		return
	}
	if entry.Hash != "" && entry.Hash == op.ContentHash() && entry.VerifiedSinceChange() {
		d.restrict(RequiresReview, RuleRedundantRepair, "identical repair was already applied and verified")
		return
	}
	if entry.LastFixed != nil && entry.ConfidenceScore > op.Confidence {
		d.demote(RuleLedgerRegression,
			fmt.Sprintf("target was fixed at %d%%, proposal is %d%%", entry.ConfidenceScore, op.Confidence))
	}
}

// EvaluateChangeSet judges every operation, then applies the set-level
// rules: EN/VI parity of the projected state, the integrity floor, and
// multi-pass verification. Decisions come back in input order.
func (e *Engine) EvaluateChangeSet(ops []repair.Operation, ctx Context) Evaluation {
	decisions := make([]Decision, 0, len(ops))
	for _, op := range ops {
		decisions = append(decisions, e.EvaluateOperation(op, ctx))
	}
	var flags []string
	for _, d := range decisions {
		if slices.Contains(d.Rules, RuleCrossRoomPollution) {
			flags = append(flags, FlagCrossRoomPollution)
			break
		}
	}

	projected := ProjectState(ctx.Storage, approvedOps(decisions))
	for _, roomID := range UnpairedRooms(projected, ctx.Rooms) {
		touched := false
		for i := range decisions {
			if decisions[i].Operation.RoomID != roomID || !decisions[i].Decision.Approved() {
				continue
			}
			decisions[i].demote(RuleParity, "room would be left with an unpaired EN/VI file")
			touched = true
		}
		if touched {
			flags = append(flags, FlagParityBrokenPrefix+roomID)
		}
	}

	gate := ctx.Summary
	if ctx.Score != nil {
		gate = ctx.Score(ProjectState(ctx.Storage, approvedOps(decisions)))
	}
	if !MeetsIntegrityThreshold(gate, e.policy.IntegrityThreshold) {
		flags = append(flags, FlagIntegrityThresholdNotMet)
		for i := range decisions {
			decisions[i].restrict(RequiresReview, RuleIntegrityThreshold,
				fmt.Sprintf("library integrity %d is below %d", gate.AverageScore, e.policy.IntegrityThreshold))
		}
	}

	projected = ProjectState(ctx.Storage, approvedOps(decisions))
	var demoted bool
	decisions, demoted = RunMultiPassVerification(decisions, projected, ctx.Rooms)
	if demoted {
		flags = append(flags, FlagMultiPassDemoted)
		projected = ProjectState(ctx.Storage, approvedOps(decisions))
	}

	slices.Sort(flags)
	flags = slices.Compact(flags)
	if flags == nil {
		flags = []string{}
	}
	for _, d := range decisions {
		if len(d.Rules) > 1 {
			e.logDecision(d)
		}
	}
	return Evaluation{Decisions: decisions, Flags: flags, Projected: projected}
}

func approvedOps(decisions []Decision) []repair.Operation {
	var ops []repair.Operation
	for _, d := range decisions {
		if d.Decision.Approved() {
			ops = append(ops, d.Operation)
		}
	}
	return ops
}

// MeetsIntegrityThreshold reports whether the library average reaches
// threshold.
func MeetsIntegrityThreshold(summary integrity.Summary, threshold int) bool {
	return summary.AverageScore >= threshold
}

func (e *Engine) logDecision(d Decision) {
	attrs := logging.DecisionAttrs("governance", d.Decision.String(), d.Reason, d.Rules...)
	attrs = append(attrs, logging.OperationAttrs(d.Operation.ID, d.Operation.Type.String(), d.Operation.RoomID)...)
	e.logger.Debug("governance decision", logging.Args(attrs...)...)
}
